package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	spotifyclient "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"tunefetch/config"
)

// Track is a single catalog entry, immutable once resolved.
type Track struct {
	Name    string
	Artists []string
}

func (t Track) JoinedArtists() string {
	return strings.Join(t.Artists, ", ")
}

// Collection is a resolved playlist or album with its tracks in the order
// the service returned them.
type Collection struct {
	Name   string
	Tracks []Track
}

type CollectionKind int

const (
	KindInvalid CollectionKind = iota
	KindPlaylist
	KindAlbum
)

// CollectionRef identifies a playlist or album, parsed once at the input
// boundary.
type CollectionRef struct {
	Kind CollectionKind
	ID   string
}

var ErrInvalidURL = errors.New("not a Spotify playlist or album URL")

// CatalogError wraps a failure talking to the Spotify API. All catalog
// failures are fatal for the run.
type CatalogError struct {
	Op  string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("spotify %s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// ParseCollectionURL extracts the playlist or album id from a Spotify URL.
// URLs without a playlist or album segment return ErrInvalidURL.
func ParseCollectionURL(raw string) (CollectionRef, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		log.Warnf("Unparseable URL: %s", raw)
		return CollectionRef{}, ErrInvalidURL
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, part := range parts {
		if i+1 >= len(parts) {
			break
		}

		// Strip query parameters from ID (e.g., ?si=tracking_id) for
		// callers that pass pre-split strings rather than full URLs.
		id := strings.Split(parts[i+1], "?")[0]
		if id == "" {
			continue
		}

		switch part {
		case "playlist":
			log.Tracef("Parsed Spotify playlist URL: %s", id)
			return CollectionRef{Kind: KindPlaylist, ID: id}, nil
		case "album":
			log.Tracef("Parsed Spotify album URL: %s", id)
			return CollectionRef{Kind: KindAlbum, ID: id}, nil
		}
	}

	log.Warnf("URL has no playlist or album segment: %s", raw)
	return CollectionRef{}, ErrInvalidURL
}

// catalogAPI is the slice of the Spotify client the resolver needs, kept
// small so tests can substitute a paginated stub.
type catalogAPI interface {
	GetPlaylist(ctx context.Context, id spotifyclient.ID, opts ...spotifyclient.RequestOption) (*spotifyclient.FullPlaylist, error)
	GetPlaylistItems(ctx context.Context, id spotifyclient.ID, opts ...spotifyclient.RequestOption) (*spotifyclient.PlaylistItemPage, error)
	GetAlbum(ctx context.Context, id spotifyclient.ID, opts ...spotifyclient.RequestOption) (*spotifyclient.FullAlbum, error)
	NextPlaylistPage(ctx context.Context, page *spotifyclient.PlaylistItemPage) error
	NextTrackPage(ctx context.Context, page *spotifyclient.SimpleTrackPage) error
}

type apiAdapter struct {
	*spotifyclient.Client
}

func (a apiAdapter) NextPlaylistPage(ctx context.Context, page *spotifyclient.PlaylistItemPage) error {
	return a.Client.NextPage(ctx, page)
}

func (a apiAdapter) NextTrackPage(ctx context.Context, page *spotifyclient.SimpleTrackPage) error {
	return a.Client.NextPage(ctx, page)
}

// Client resolves collections against the Spotify Web API.
type Client struct {
	api       catalogAPI
	pageLimit int
}

// NewClient performs the client-credentials token exchange and returns a
// ready catalog client.
func NewClient(ctx context.Context, cfg config.SpotifyConfig) (*Client, error) {
	authConfig := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := authConfig.Token(ctx)
	if err != nil {
		sentry.CaptureException(err)
		return nil, &CatalogError{Op: "auth", Err: err}
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = 100
	}
	return &Client{
		api:       apiAdapter{spotifyclient.New(httpClient)},
		pageLimit: pageLimit,
	}, nil
}

// ResolveCollection fetches the named collection and its full ordered track
// list.
func (c *Client) ResolveCollection(ctx context.Context, ref CollectionRef) (*Collection, error) {
	switch ref.Kind {
	case KindPlaylist:
		return c.resolvePlaylist(ctx, ref.ID)
	case KindAlbum:
		return c.resolveAlbum(ctx, ref.ID)
	default:
		return nil, ErrInvalidURL
	}
}

func (c *Client) resolvePlaylist(ctx context.Context, id string) (*Collection, error) {
	log.Tracef("Fetching playlist from Spotify API: %s", id)

	span := sentry.StartSpan(ctx, "spotify.get_playlist")
	span.Description = "Get playlist tracks from Spotify API"
	span.SetTag("playlist_id", id)
	defer span.Finish()

	playlist, err := c.api.GetPlaylist(ctx, spotifyclient.ID(id))
	if err != nil {
		log.Errorf("Failed to fetch Spotify playlist %s: %v", id, err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, &CatalogError{Op: "get playlist", Err: friendlyAPIError(err)}
	}

	total := int(playlist.Tracks.Total)
	log.Debugf("Playlist '%s' reports %d tracks", playlist.Name, total)

	page, err := c.api.GetPlaylistItems(ctx, spotifyclient.ID(id), spotifyclient.Limit(c.pageLimit))
	if err != nil {
		log.Errorf("Failed to fetch Spotify playlist items %s: %v", id, err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, &CatalogError{Op: "get playlist items", Err: friendlyAPIError(err)}
	}

	tracks := make([]Track, 0, total)
	for {
		for _, item := range page.Items {
			// Skip deleted tracks and non-track items (podcasts, episodes)
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, newTrack(item.Track.Track.SimpleTrack))
		}

		err = c.api.NextPlaylistPage(ctx, page)
		if errors.Is(err, spotifyclient.ErrNoMorePages) {
			break
		}
		if err != nil {
			log.Errorf("Failed to page Spotify playlist %s: %v", id, err)
			sentry.CaptureException(err)
			span.Status = sentry.SpanStatusInternalError
			return nil, &CatalogError{Op: "page playlist items", Err: friendlyAPIError(err)}
		}
	}

	log.Debugf("Fetched %d tracks from Spotify playlist '%s'", len(tracks), playlist.Name)
	span.Status = sentry.SpanStatusOK
	span.SetData("tracks_count", len(tracks))

	return &Collection{Name: playlist.Name, Tracks: tracks}, nil
}

func (c *Client) resolveAlbum(ctx context.Context, id string) (*Collection, error) {
	log.Tracef("Fetching album from Spotify API: %s", id)

	span := sentry.StartSpan(ctx, "spotify.get_album")
	span.Description = "Get album tracks from Spotify API"
	span.SetTag("album_id", id)
	defer span.Finish()

	album, err := c.api.GetAlbum(ctx, spotifyclient.ID(id))
	if err != nil {
		log.Errorf("Failed to fetch Spotify album %s: %v", id, err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return nil, &CatalogError{Op: "get album", Err: friendlyAPIError(err)}
	}

	tracks := make([]Track, 0, len(album.Tracks.Tracks))
	page := &album.Tracks
	for {
		for _, track := range page.Tracks {
			tracks = append(tracks, newTrack(track))
		}

		err = c.api.NextTrackPage(ctx, page)
		if errors.Is(err, spotifyclient.ErrNoMorePages) {
			break
		}
		if err != nil {
			log.Errorf("Failed to page Spotify album %s: %v", id, err)
			sentry.CaptureException(err)
			span.Status = sentry.SpanStatusInternalError
			return nil, &CatalogError{Op: "page album tracks", Err: friendlyAPIError(err)}
		}
	}

	log.Debugf("Fetched %d tracks from Spotify album '%s'", len(tracks), album.Name)
	span.Status = sentry.SpanStatusOK
	span.SetData("tracks_count", len(tracks))

	return &Collection{Name: album.Name, Tracks: tracks}, nil
}

func newTrack(track spotifyclient.SimpleTrack) Track {
	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}
	return Track{Name: track.Name, Artists: artists}
}

// friendlyAPIError maps common HTTP failures to readable messages.
// zmb3/spotify doesn't provide typed errors, so we parse error strings;
// fragile, but the raw messages are useless to end users.
func friendlyAPIError(err error) error {
	errStr := err.Error()
	if strings.Contains(errStr, "404") || strings.Contains(errStr, "Not Found") {
		return errors.New("playlist or album not found")
	}
	if strings.Contains(errStr, "403") || strings.Contains(errStr, "Forbidden") {
		return errors.New("playlist or album is private or not accessible")
	}
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "Unauthorized") {
		return errors.New("Spotify credentials were rejected")
	}
	return err
}
