package feed

import (
	"time"
)

// Feed is a parsed RSS/Atom document describing a podcast.
type Feed struct {
	Title          string
	Link           string
	Description    string
	Author         string
	Language       string
	ImageURL       string
	ITunesImageURL string
	Items          []Item
}

// Image returns the feed-level artwork, preferring the channel image over the
// iTunes extension image.
func (f *Feed) Image() string {
	if f.ImageURL != "" {
		return f.ImageURL
	}
	return f.ITunesImageURL
}

// Item is a single entry of a parsed feed. The iTunes extension fields are
// carried as supplied by the feed and are not trusted as authoritative; in
// particular the episode number used for reconciliation is always re-derived
// from the title.
type Item struct {
	Title       string
	Link        string
	Description string
	Content     string
	PublishedAt *time.Time

	AudioURL    string
	AudioType   string
	AudioLength int64

	Duration      string
	ImageURL      string
	Explicit      string
	EpisodeType   string
	Season        string
	EpisodeNumber string
}

// Episode is a reconciled episode record, either mapped from a live feed item
// or lifted from the missing-episode catalog.
type Episode struct {
	Title         string     `json:"title"`
	Link          string     `json:"link"`
	AudioURL      string     `json:"audioUrl"`
	Description   string     `json:"description"`
	ImageURL      string     `json:"imageUrl"`
	PublishedAt   *time.Time `json:"publishDate"`
	EpisodeNumber *int       `json:"episodeNumber"`
	Duration      string     `json:"duration,omitempty"`
	PodcastTitle  string     `json:"podcastTitle"`
	PodcastImage  string     `json:"podcastImage"`
	Source        string     `json:"source"`
}

const (
	SourceFeed    = "feed"
	SourceCatalog = "catalog"
)
