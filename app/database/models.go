package database

import (
	"time"
)

// MissingEpisode is a manually curated episode absent from a podcast's live
// feed. Title is the natural key; podcast_name, base_podcast_name and
// episode_number are derived from it at import time.
type MissingEpisode struct {
	ID              string
	Title           string
	URL             string
	AudioURL        string
	ImageURL        string
	Description     string
	PublishDate     *time.Time
	EpisodeNumber   *int
	PodcastName     string
	BasePodcastName string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Subscription struct {
	ID          string
	UserID      string
	URL         string
	Title       string
	Author      string
	Description string
	ImageURL    string
	AddedAt     time.Time
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PodcastStats summarizes catalog contents for one podcast name.
type PodcastStats struct {
	PodcastName  string
	EpisodeCount int
}
