package musicsearch

import (
	"context"
	"fmt"
	"html"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTube searches videos through the YouTube Data API v3.
type YouTube struct {
	svc *youtube.Service
}

// NewYouTube builds a provider keyed by apiKey. An empty key yields a
// provider that fails every search with ErrMissingAPIKey. Extra options are
// applied after the key, so tests can redirect the endpoint.
func NewYouTube(ctx context.Context, apiKey string, extra ...option.ClientOption) (*YouTube, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" && len(extra) == 0 {
		return &YouTube{}, nil
	}
	opts := make([]option.ClientOption, 0, len(extra)+1)
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	opts = append(opts, extra...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube client: %w", err)
	}
	return &YouTube{svc: svc}, nil
}

func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	if y == nil || y.svc == nil {
		return nil, ErrMissingAPIKey
	}
	// Ask for a few extra; entries without ids are filtered downstream.
	resp, err := y.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit + 5)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	tracks := make([]Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Snippet == nil {
			continue
		}
		tracks = append(tracks, Track{
			ID:        item.Id.VideoId,
			Title:     html.UnescapeString(item.Snippet.Title),
			Channel:   html.UnescapeString(item.Snippet.ChannelTitle),
			Thumbnail: thumbnailURL(item.Snippet.Thumbnails),
		})
	}
	return tracks, nil
}

func thumbnailURL(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}
