package musicsearch

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidQuery    = errors.New("musicsearch: invalid query parameter")
	ErrQueryTooShort   = errors.New("musicsearch: query too short")
	ErrUpstreamTimeout = errors.New("musicsearch: search operation timed out")
	ErrUpstreamFetch   = errors.New("musicsearch: failed to fetch videos")
	ErrMissingAPIKey   = errors.New("musicsearch: no api key configured")
)

const minQueryRunes = 2

// Track is one playable search result.
type Track struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Thumbnail string `json:"thumbnail"`
}

// Provider runs a video search upstream. Implementations return at most limit
// tracks and honor ctx cancellation.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Track, error)
}

// NormalizeQuery trims and lowercases raw. The result is the cache key.
// Only an empty raw value is invalid; blank or one-rune queries are too short.
func NormalizeQuery(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidQuery
	}
	q := strings.ToLower(strings.TrimSpace(raw))
	if utf8.RuneCountInString(q) < minQueryRunes {
		return "", ErrQueryTooShort
	}
	return q, nil
}

// FallbackThumbnail is the stock YouTube still for a video id.
func FallbackThumbnail(id string) string {
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}

// sanitize drops tracks without an id or title, fills missing thumbnails and
// caps the slice at limit.
func sanitize(in []Track, limit int) []Track {
	out := make([]Track, 0, min(len(in), limit))
	for _, t := range in {
		if len(out) >= limit {
			break
		}
		t.ID = strings.TrimSpace(t.ID)
		t.Title = strings.TrimSpace(t.Title)
		if t.ID == "" || t.Title == "" {
			continue
		}
		if strings.TrimSpace(t.Thumbnail) == "" {
			t.Thumbnail = FallbackThumbnail(t.ID)
		}
		out = append(out, t)
	}
	return out
}
