package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"

	"tunefetch/config"
	"tunefetch/dataset"
	"tunefetch/downloader"
	"tunefetch/helpers"
	"tunefetch/spotify"
	"tunefetch/youtube"
)

// ErrNoLinks reports a run where no track resolved to a video. It is a
// terminal outcome of its own, distinct from a download failure.
var ErrNoLinks = errors.New("no YouTube links found")

// Catalog resolves a collection reference into its ordered track list.
type Catalog interface {
	ResolveCollection(ctx context.Context, ref spotify.CollectionRef) (*spotify.Collection, error)
}

// Searcher resolves tracks to video matches, in collection order.
type Searcher interface {
	ResolveAll(ctx context.Context, tracks []spotify.Track, onProgress func(done, total int)) []youtube.Match
}

// DownloadFunc matches downloader.Download.
type DownloadFunc func(ctx context.Context, urls []string, destDir string, format string, audioExt string) (*downloader.Report, error)

// Driver sequences the pipeline: resolve, match, persist, download. It
// makes a single forward pass with no retries; a fatal stage returns its
// error and leaves artifacts from earlier stages on disk.
type Driver struct {
	catalog  Catalog
	search   Searcher
	download DownloadFunc
}

func NewDriver(catalog Catalog, search Searcher) *Driver {
	return &Driver{
		catalog:  catalog,
		search:   search,
		download: downloader.Download,
	}
}

var (
	headline  = color.New(color.FgCyan, color.Bold)
	stageInfo = color.New(color.FgCyan)
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

// Run processes one collection URL end to end.
func (d *Driver) Run(ctx context.Context, rawURL string) error {
	ref, err := spotify.ParseCollectionURL(rawURL)
	if err != nil {
		return err
	}

	collection, err := d.catalog.ResolveCollection(ctx, ref)
	if err != nil {
		return err
	}

	kind := "Playlist"
	if ref.Kind == spotify.KindAlbum {
		kind = "Album"
	}
	headline.Printf("\n%s: %s\n", kind, collection.Name)
	fmt.Printf("Total tracks: %d\n\n", len(collection.Tracks))

	folder := helpers.Sanitize(collection.Name)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("creating folder %s: %w", folder, err)
	}
	log.Debugf("created folder: %s", folder)

	dataset.Preview(os.Stdout, collection.Tracks, config.Config.Options.PreviewRows)

	stageInfo.Println("\nSearching YouTube...")
	matches := d.search.ResolveAll(ctx, collection.Tracks, func(done, total int) {
		fmt.Printf("\rSearching YouTube [%d/%d]", done, total)
		if done == total {
			fmt.Println()
		}
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	csvPath := filepath.Join(folder, dataset.FileName)
	if err := dataset.WriteCSV(dataset.BuildTable(matches), csvPath); err != nil {
		return err
	}
	okColor.Printf("Saved results to %s\n", csvPath)

	links := make([]string, 0, len(matches))
	for _, match := range matches {
		if match.Resolved() {
			links = append(links, match.URL)
		}
	}

	rate := 0.0
	if len(matches) > 0 {
		rate = float64(len(links)) / float64(len(matches)) * 100
	}
	fmt.Printf("Success rate: %.0f%%\n", rate)

	if len(links) == 0 {
		warnColor.Println("No YouTube links found. Check your API key and try again.")
		return ErrNoLinks
	}

	stageInfo.Printf("\nDownloading %d songs to %s/ (this may take a while)...\n", len(links), folder)
	report, err := d.download(ctx, links, folder, config.Config.Download.Format, config.Config.Download.AudioExt)
	if err != nil {
		return err
	}

	okColor.Printf("Download completed: %d files in %s/\n", len(report.Files), folder)
	for _, file := range report.Files {
		fmt.Printf("  - %s\n", file)
	}
	return nil
}
