package api

import (
	"context"
	"time"

	"github.com/rbarros/podcast-hub/app/auth"
	"github.com/rbarros/podcast-hub/app/catalog"
	"github.com/rbarros/podcast-hub/app/database"
	"github.com/rbarros/podcast-hub/app/feed"
)

type FetcherInterface interface {
	Run(ctx context.Context, url string) (*feed.Feed, error)
}

var _ FetcherInterface = (*feed.Fetcher)(nil)

type ReconcilerInterface interface {
	Run(f *feed.Feed) []feed.Episode
}

var _ ReconcilerInterface = (*feed.Reconciler)(nil)

type Handler struct {
	fetcher          FetcherInterface
	reconciler       ReconcilerInterface
	episodeRepo      database.MissingEpisodeRepository
	subscriptionRepo database.SubscriptionRepository
	userRepo         database.UserRepository
	importer         *catalog.Importer
	maintainer       *catalog.Maintainer
	auth             *auth.Auth
}

// Request bodies

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type subscribeRequest struct {
	URL         string `json:"url" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// Response shapes

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u *database.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type subscriptionResponse struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	AddedAt     time.Time `json:"addedAt"`
}

func newSubscriptionResponse(s database.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:          s.ID,
		URL:         s.URL,
		Title:       s.Title,
		Author:      s.Author,
		Description: s.Description,
		ImageURL:    s.ImageURL,
		AddedAt:     s.AddedAt,
	}
}

type missingEpisodeResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	URL             string     `json:"url,omitempty"`
	AudioURL        string     `json:"audioUrl"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	Description     string     `json:"description,omitempty"`
	PublishDate     *time.Time `json:"publishDate"`
	EpisodeNumber   *int       `json:"episodeNumber"`
	PodcastName     string     `json:"podcastName,omitempty"`
	BasePodcastName string     `json:"basePodcastName,omitempty"`
}

func newMissingEpisodeResponses(episodes []database.MissingEpisode) []missingEpisodeResponse {
	out := make([]missingEpisodeResponse, 0, len(episodes))
	for _, ep := range episodes {
		out = append(out, missingEpisodeResponse{
			ID:              ep.ID,
			Title:           ep.Title,
			URL:             ep.URL,
			AudioURL:        ep.AudioURL,
			ImageURL:        ep.ImageURL,
			Description:     ep.Description,
			PublishDate:     ep.PublishDate,
			EpisodeNumber:   ep.EpisodeNumber,
			PodcastName:     ep.PodcastName,
			BasePodcastName: ep.BasePodcastName,
		})
	}
	return out
}

type podcastResponse struct {
	Title        string `json:"title"`
	Link         string `json:"link,omitempty"`
	Description  string `json:"description,omitempty"`
	Author       string `json:"author,omitempty"`
	Language     string `json:"language,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	EpisodeCount int    `json:"episodeCount"`
}
