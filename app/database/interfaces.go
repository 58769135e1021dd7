package database

import "errors"

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (missing_episodes.title or subscriptions (user_id, url)).
var ErrDuplicate = errors.New("record already exists")

type MissingEpisodeRepository interface {
	// FindCandidates returns entries loosely matching a podcast identity:
	// stored podcast name contains podcastName, base name contains baseName,
	// or title contains baseName (all case- and accent-insensitive).
	// Ordered ascending by episode number, entries without a number first.
	FindCandidates(podcastName, baseName string) ([]MissingEpisode, error)
	FindByPodcast(podcastName string, numbers []int) ([]MissingEpisode, error)
	GetAll() ([]MissingEpisode, error)
	GetByTitle(title string) (*MissingEpisode, error)
	GetCount() (int, error)
	GetStatsByPodcast() ([]PodcastStats, error)

	Insert(ep MissingEpisode) (string, error)
	UpdateDerived(id string, episodeNumber *int, podcastName, basePodcastName string) error
}

type SubscriptionRepository interface {
	GetForUser(userID string) ([]Subscription, error)
	Insert(sub Subscription) (*Subscription, error)
	DeleteByID(id, userID string) (bool, error)
}

type UserRepository interface {
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	Insert(user User) (*User, error)
}
