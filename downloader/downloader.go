package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// binary is a package var so tests can substitute a harmless command.
var binary = "yt-dlp"

// ErrInterrupted reports a user-requested abort of the download batch.
// Files downloaded before the interrupt are kept on disk.
var ErrInterrupted = errors.New("download interrupted")

// FetchError reports a non-zero exit from the download utility. Files
// downloaded before the failure are kept on disk.
type FetchError struct {
	ExitCode int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %v", binary, e.ExitCode, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Report summarizes a completed batch.
type Report struct {
	Requested int
	Files     []string
}

// Probe checks that the download utility is on PATH and returns its
// version string.
func Probe() (string, error) {
	output, err := exec.Command(binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s is not installed or not on PATH: %w", binary, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Download hands all URLs to the download utility in a single batch
// invocation, writing audio files into destDir. destDir must already
// exist. The call blocks for as long as the batch takes; cancelling ctx
// aborts the utility and returns ErrInterrupted. The working directory is
// restored on every exit path.
func Download(ctx context.Context, urls []string, destDir string, format string, audioExt string) (*Report, error) {
	if len(urls) == 0 {
		return &Report{}, nil
	}

	originalDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("reading working directory: %w", err)
	}
	if err := os.Chdir(destDir); err != nil {
		return nil, fmt.Errorf("entering %s: %w", destDir, err)
	}
	defer func() {
		if err := os.Chdir(originalDir); err != nil {
			log.Errorf("failed to restore working directory %s: %v", originalDir, err)
		}
	}()

	args := []string{"-f", format, "--output", "%(title)s.%(ext)s"}
	args = append(args, urls...)

	log.Infof("Running %s with %d URLs", binary, len(urls))
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	runErr := cmd.Run()
	report := &Report{Requested: len(urls), Files: listAudioFiles(".", audioExt)}

	if ctx.Err() != nil {
		log.Warn("download interrupted by user")
		return report, ErrInterrupted
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return report, &FetchError{ExitCode: exitErr.ExitCode(), Err: runErr}
		}
		return report, &FetchError{ExitCode: -1, Err: runErr}
	}

	log.Debugf("downloaded %d files into %s", len(report.Files), destDir)
	return report, nil
}

func listAudioFiles(dir string, ext string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warnf("could not list %s: %v", dir, err)
		return nil
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), "."+ext) {
			files = append(files, entry.Name())
		}
	}
	return files
}
