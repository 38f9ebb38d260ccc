package youtube

import (
	"context"
	"fmt"
	"html"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"

	"tunefetch/spotify"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// YouTube video category 10 is "Music".
const musicCategoryID = "10"

// Match is the per-track search outcome. An empty URL means no result was
// found, which is a valid terminal state rather than an error.
type Match struct {
	Track spotify.Track
	URL   string
	Title string
}

func (m Match) Resolved() bool {
	return m.URL != ""
}

// searchAPI is the slice of the YouTube Data API the resolver needs, kept
// small so tests can substitute a deterministic stub.
type searchAPI interface {
	Search(query string, maxResults int64) ([]*ytapi.SearchResult, error)
}

type apiSearch struct {
	service *ytapi.Service
}

func (a apiSearch) Search(query string, maxResults int64) ([]*ytapi.SearchResult, error) {
	call := a.service.Search.List([]string{"snippet"}).
		Q(query).
		MaxResults(maxResults).
		Type("video").
		VideoCategoryId(musicCategoryID)

	response, err := call.Do()
	if err != nil {
		return nil, err
	}
	return response.Items, nil
}

// Resolver turns tracks into video matches, one search per track.
type Resolver struct {
	search searchAPI
}

func NewResolver(ctx context.Context, apiKey string) (*Resolver, error) {
	service, err := ytapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Errorf("error creating YouTube client: %v", err)
		return nil, fmt.Errorf("error creating YouTube client: %w", err)
	}
	return &Resolver{search: apiSearch{service: service}}, nil
}

// BuildQuery forms the search string for a track: the name plus a "lyrics"
// keyword, with the artists appended when known.
func BuildQuery(track spotify.Track) string {
	query := track.Name + " lyrics"
	if artists := track.JoinedArtists(); artists != "" {
		query += " " + artists
	}
	return query
}

// ResolveMatch searches for the track and takes the first hit, with no
// secondary ranking. Zero hits and request errors both degrade to an
// unresolved Match; they never abort the batch.
func (r *Resolver) ResolveMatch(ctx context.Context, track spotify.Track) Match {
	logger := log.WithFields(log.Fields{"module": "youtube", "track": track.Name})

	span := sentry.StartSpan(ctx, "youtube.search")
	span.Description = "Search YouTube API"
	query := BuildQuery(track)
	span.SetTag("query", query)
	defer span.Finish()

	items, err := r.search.Search(query, 1)
	if err != nil {
		logger.Errorf("error searching for %q: %v", query, err)
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return Match{Track: track}
	}

	for _, item := range items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}

		title := ""
		if item.Snippet != nil {
			title = html.UnescapeString(item.Snippet.Title)
		}
		logger.Tracef("top hit: %s", title)
		span.Status = sentry.SpanStatusOK
		return Match{
			Track: track,
			URL:   watchURLPrefix + item.Id.VideoId,
			Title: title,
		}
	}

	logger.Warnf("no results for %q", query)
	span.Status = sentry.SpanStatusOK
	return Match{Track: track}
}

// ResolveAll resolves every track strictly in collection order, invoking
// onProgress after each completed search. Cancellation is honored between
// tracks only; on cancellation the remaining tracks are returned unresolved
// so the result stays one-to-one with the input.
func (r *Resolver) ResolveAll(ctx context.Context, tracks []spotify.Track, onProgress func(done, total int)) []Match {
	matches := make([]Match, 0, len(tracks))
	for i, track := range tracks {
		if ctx.Err() != nil {
			log.Warnf("search cancelled after %d/%d tracks", i, len(tracks))
			for _, remaining := range tracks[i:] {
				matches = append(matches, Match{Track: remaining})
			}
			return matches
		}

		matches = append(matches, r.ResolveMatch(ctx, track))
		if onProgress != nil {
			onProgress(i+1, len(tracks))
		}
	}
	return matches
}
