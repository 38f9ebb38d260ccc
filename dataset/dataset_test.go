package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunefetch/spotify"
	"tunefetch/youtube"
)

func sampleMatches() []youtube.Match {
	return []youtube.Match{
		{
			Track: spotify.Track{Name: "First Song", Artists: []string{"Band"}},
			URL:   "https://www.youtube.com/watch?v=aaa111",
			Title: "First Song (Lyrics)",
		},
		{
			// Unresolved match: both YouTube cells stay empty.
			Track: spotify.Track{Name: "Obscure B-Side", Artists: []string{"Band", "Guest"}},
		},
		{
			Track: spotify.Track{Name: "Song, With Comma", Artists: []string{"Solo"}},
			URL:   "https://www.youtube.com/watch?v=ccc333",
			Title: `A "Quoted" Title`,
		},
	}
}

func TestBuildTable(t *testing.T) {
	rows := BuildTable(sampleMatches())

	require.Len(t, rows, 3)
	assert.Equal(t, "First Song", rows[0].TrackName)
	assert.Equal(t, "Band, Guest", rows[1].ArtistNames)
	assert.Empty(t, rows[1].YouTubeLink)
	assert.Empty(t, rows[1].YouTubeVideoTitle)
	assert.Equal(t, "https://www.youtube.com/watch?v=ccc333", rows[2].YouTubeLink)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	rows := BuildTable(sampleMatches())
	path := filepath.Join(t.TempDir(), FileName)

	require.NoError(t, WriteCSV(rows, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Equal(t, "Track Name,Artist Name(s),YouTube Link,YouTube Video Title", lines[0])
	assert.NotContains(t, string(raw), "null")
	assert.NotContains(t, string(raw), "None")

	reread, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, rows, reread)
}

func TestWriteCSVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	require.NoError(t, WriteCSV(BuildTable(sampleMatches()), path))
	require.NoError(t, WriteCSV([]Row{{TrackName: "Only"}}, path))

	rows, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Only", rows[0].TrackName)
}

func TestWriteCSVMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", FileName)

	err := WriteCSV(BuildTable(sampleMatches()), path)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no partial file may be left behind")
}

func TestWriteCSVLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSV(BuildTable(sampleMatches()), filepath.Join(dir, FileName)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestPreview(t *testing.T) {
	tracks := []spotify.Track{
		{Name: "One", Artists: []string{"A"}},
		{Name: "Two", Artists: []string{"B"}},
		{Name: "Three", Artists: []string{"C"}},
	}

	var buf bytes.Buffer
	Preview(&buf, tracks, 2)

	out := buf.String()
	assert.Contains(t, out, "One")
	assert.Contains(t, out, "Two")
	assert.NotContains(t, out, "Three")

	buf.Reset()
	Preview(&buf, tracks, 10)
	assert.Contains(t, buf.String(), "Three")

	buf.Reset()
	Preview(&buf, nil, 5)
	assert.Empty(t, buf.String())
}
