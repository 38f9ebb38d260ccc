package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	appConfig "tunefetch/config"
	"tunefetch/downloader"
	"tunefetch/pipeline"
	"tunefetch/sentry"
	"tunefetch/spotify"
	"tunefetch/youtube"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}
	appConfig.NewConfig()
	setupLogging()

	if missing := appConfig.Config.Validate(); len(missing) > 0 {
		color.Red("Missing required environment variables:")
		for _, name := range missing {
			fmt.Printf("  - %s\n", name)
		}
		fmt.Println("\nCreate a .env file with your API keys before running.")
		os.Exit(1)
	}

	sentry.Init()

	if err := run(context.Background()); err != nil {
		reportFailure(err)
		sentry.Flush()
		os.Exit(1)
	}

	color.Green("\nProcess completed successfully!")
	sentry.Flush()
}

func run(ctx context.Context) error {
	version, err := downloader.Probe()
	if err != nil {
		return err
	}
	log.Debugf("yt-dlp version %s", version)

	var rawURL string
	prompt := &survey.Input{Message: "Spotify playlist or album URL:"}
	if err := survey.AskOne(prompt, &rawURL, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := spotify.NewClient(ctx, appConfig.Config.Spotify)
	if err != nil {
		return err
	}
	search, err := youtube.NewResolver(ctx, appConfig.Config.Youtube.APIKey)
	if err != nil {
		return err
	}

	driver := pipeline.NewDriver(catalog, search)
	return driver.Run(ctx, strings.TrimSpace(rawURL))
}

// reportFailure prints a human-readable diagnostic for the stage that
// halted the run. No stack traces reach the user.
func reportFailure(err error) {
	var catalogErr *spotify.CatalogError
	var fetchErr *downloader.FetchError

	switch {
	case errors.Is(err, spotify.ErrInvalidURL):
		color.Red("Invalid URL format. Please provide a Spotify playlist or album URL.")
	case errors.As(err, &catalogErr):
		color.Red("Failed to export collection: %v. Check your URL and credentials.", catalogErr.Err)
	case errors.Is(err, pipeline.ErrNoLinks):
		color.Yellow("\nProcess finished without any downloadable links.")
	case errors.Is(err, downloader.ErrInterrupted), errors.Is(err, context.Canceled):
		color.Yellow("\nInterrupted. Files downloaded so far are kept.")
	case errors.As(err, &fetchErr):
		color.Red("Download failed (exit status %d). Files downloaded so far are kept.", fetchErr.ExitCode)
	default:
		color.Red("Process failed: %v", err)
		sentry.ReportError(err)
	}
}

func setupLogging() {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		FieldsOrder:     []string{"module"},
		TimestampFormat: "15:04:05",
	})

	level, err := log.ParseLevel(appConfig.Config.Options.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
