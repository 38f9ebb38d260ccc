package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"

	"tunefetch/spotify"
	"tunefetch/youtube"
)

// FileName is the CSV written into every collection folder.
const FileName = "spotify_playlist_with_youtube.csv"

// Row is one CSV line. Unresolved matches keep empty link and title cells.
type Row struct {
	TrackName         string `csv:"Track Name"`
	ArtistNames       string `csv:"Artist Name(s)"`
	YouTubeLink       string `csv:"YouTube Link"`
	YouTubeVideoTitle string `csv:"YouTube Video Title"`
}

// BuildTable flattens matches into rows, one per match, order preserved.
func BuildTable(matches []youtube.Match) []Row {
	rows := make([]Row, 0, len(matches))
	for _, match := range matches {
		rows = append(rows, Row{
			TrackName:         match.Track.Name,
			ArtistNames:       match.Track.JoinedArtists(),
			YouTubeLink:       match.URL,
			YouTubeVideoTitle: match.Title,
		})
	}
	return rows
}

// WriteCSV persists the full table atomically: the CSV is marshalled in
// memory, written to a temp file next to the target, and renamed into
// place. An interrupted write never leaves a partial file at path.
func WriteCSV(rows []Row, path string) error {
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fmt.Errorf("marshalling csv: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".csv-*")
	if err != nil {
		return fmt.Errorf("creating temp csv: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing csv: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing csv: %w", err)
	}
	return nil
}

// ReadCSV loads a previously written table.
func ReadCSV(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows := []Row{}
	if err := gocsv.Unmarshal(file, &rows); err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return rows, nil
}

// Preview renders the first n tracks as a terminal table.
func Preview(w io.Writer, tracks []spotify.Track, n int) {
	if n > len(tracks) {
		n = len(tracks)
	}
	if n == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Track Name", "Artist Name(s)"})
	for i, track := range tracks[:n] {
		table.Append([]string{fmt.Sprintf("%d", i+1), track.Name, track.JoinedArtists()})
	}
	table.Render()
}
