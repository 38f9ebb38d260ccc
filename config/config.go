package config

import (
	"os"
	"strconv"
)

type ConfigStruct struct {
	Spotify  SpotifyConfig
	Youtube  YoutubeConfig
	Download DownloadConfig
	Options  Options
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	PageLimit    int
}

type YoutubeConfig struct {
	APIKey string
}

type DownloadConfig struct {
	Format   string
	AudioExt string
}

type Options struct {
	LogLevel    string
	PreviewRows int
}

var Config *ConfigStruct

func NewConfig() {
	config := &ConfigStruct{
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			PageLimit:    getPageLimit(),
		},
		Youtube: YoutubeConfig{
			APIKey: os.Getenv("YOUTUBE_API_KEY"),
		},
		Download: DownloadConfig{
			Format:   getDownloadFormat(),
			AudioExt: getAudioExt(),
		},
		Options: Options{
			LogLevel:    getLogLevel(),
			PreviewRows: getPreviewRows(),
		},
	}

	Config = config
}

// Validate returns the names of required environment variables that are
// missing. A non-empty result means startup must abort before any network
// activity happens.
func (c *ConfigStruct) Validate() []string {
	missing := []string{}
	if c.Spotify.ClientID == "" {
		missing = append(missing, "SPOTIFY_CLIENT_ID")
	}
	if c.Spotify.ClientSecret == "" {
		missing = append(missing, "SPOTIFY_CLIENT_SECRET")
	}
	if c.Youtube.APIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	return missing
}

func getPageLimit() int {
	limitStr := os.Getenv("SPOTIFY_PAGE_LIMIT")
	if limitStr == "" {
		return 100
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 100
	}
	if limit > 100 {
		return 100 // Spotify API max per page
	}
	return limit
}

func getDownloadFormat() string {
	format := os.Getenv("DOWNLOAD_FORMAT")
	if format == "" {
		return "bestaudio[ext=m4a]"
	}
	return format
}

func getAudioExt() string {
	ext := os.Getenv("AUDIO_EXT")
	if ext == "" {
		return "m4a"
	}
	return ext
}

func getLogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func getPreviewRows() int {
	rowsStr := os.Getenv("PREVIEW_ROWS")
	if rowsStr == "" {
		return 5
	}
	rows, err := strconv.Atoi(rowsStr)
	if err != nil || rows < 0 {
		return 5
	}
	return rows
}
