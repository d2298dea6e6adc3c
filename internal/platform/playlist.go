package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// PlaylistExpander resolves playlist URLs into their member video URLs so the
// scheduler only ever sees individual items.
type PlaylistExpander struct {
	timeout time.Duration
}

// NewPlaylistExpander creates an expander with the default timeout.
func NewPlaylistExpander() *PlaylistExpander {
	return &PlaylistExpander{timeout: DefaultParseTimeout}
}

// SetTimeout sets the timeout for playlist resolution.
func (p *PlaylistExpander) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// IsPlaylistURL reports whether the URL refers to a playlist.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, PlaylistParam)
}

// ExtractPlaylistID extracts the playlist ID from various URL formats.
func ExtractPlaylistID(url string) string {
	if !strings.Contains(url, PlaylistParam) {
		return ""
	}
	parts := strings.Split(url, PlaylistParam)
	if len(parts) < 2 {
		return ""
	}
	id := parts[1]
	if strings.Contains(id, ParamSeparator) {
		id = strings.Split(id, ParamSeparator)[0]
	}
	return id
}

// Expand resolves a playlist URL into the watch URLs of its videos, in
// playlist order.
func (p *PlaylistExpander) Expand(ctx context.Context, url string) ([]string, error) {
	playlistID := ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", url)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	urls := make([]string, 0, len(items))
	for _, it := range items {
		urls = append(urls, fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID))
	}
	return urls, nil
}

// ExpandAll maps a mixed list of video and playlist URLs into a flat list of
// video URLs, preserving submission order. Playlists that fail to resolve are
// returned in errs; the remaining URLs still schedule.
func (p *PlaylistExpander) ExpandAll(ctx context.Context, urls []string) (expanded []string, errs []error) {
	for _, url := range urls {
		if !IsPlaylistURL(url) {
			expanded = append(expanded, url)
			continue
		}
		members, err := p.Expand(ctx, url)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		expanded = append(expanded, members...)
	}
	return expanded, errs
}
