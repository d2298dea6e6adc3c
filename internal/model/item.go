package model

import (
	"strings"
	"time"
)

// URL parameters and separators
const (
	VideoParam     = "v="
	ParamSeparator = "&"
	ShortHost      = "youtu.be/"
)

// ContentItem represents a single piece of content awaiting download.
// The queue owns an item until it is assigned; ownership passes to an
// account session for the duration of one attempt.
type ContentItem struct {
	ID             string     // stable identifier (video ID when extractable, else the URL)
	URL            string     // source URL
	Status         ItemStatus // lifecycle status
	Attempts       int        // total attempts made so far
	LastError      string     // last error message if any
	ErrorKind      ErrorKind  // terminal error kind for failed items
	ArtifactPath   string     // path to downloaded file
	EnqueuedAt     time.Time  // when the item entered the queue
	FirstAttemptAt time.Time  // when the first attempt started
	FinishedAt     time.Time  // when the item reached a terminal status
}

// NewContentItem creates a pending item for a URL.
func NewContentItem(url string) *ContentItem {
	return &ContentItem{
		ID:         ExtractVideoID(url),
		URL:        url,
		Status:     StatusPending,
		EnqueuedAt: time.Now(),
	}
}

// ExtractVideoID extracts the YouTube video ID from watch and short-link URLs.
// Falls back to the full URL when no ID can be extracted, so the result is
// always a usable deduplication key.
func ExtractVideoID(url string) string {
	if strings.Contains(url, VideoParam) {
		parts := strings.Split(url, VideoParam)
		if len(parts) > 1 {
			id := parts[1]
			if strings.Contains(id, ParamSeparator) {
				id = strings.Split(id, ParamSeparator)[0]
			}
			if id != "" {
				return id
			}
		}
	}

	if strings.Contains(url, ShortHost) {
		parts := strings.Split(url, ShortHost)
		if len(parts) > 1 {
			id := parts[1]
			if idx := strings.IndexAny(id, "?&/"); idx >= 0 {
				id = id[:idx]
			}
			if id != "" {
				return id
			}
		}
	}

	return url
}
