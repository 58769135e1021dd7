package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rbarros/podcast-hub/app/auth"
	"github.com/rbarros/podcast-hub/app/catalog"
	"github.com/rbarros/podcast-hub/app/database"
	"github.com/rbarros/podcast-hub/app/feed"
)

func NewHandler(fetcher FetcherInterface, reconciler ReconcilerInterface,
	episodeRepo database.MissingEpisodeRepository,
	subscriptionRepo database.SubscriptionRepository,
	userRepo database.UserRepository,
	importer *catalog.Importer, maintainer *catalog.Maintainer,
	authService *auth.Auth) *Handler {
	return &Handler{
		fetcher:          fetcher,
		reconciler:       reconciler,
		episodeRepo:      episodeRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		importer:         importer,
		maintainer:       maintainer,
		auth:             authService,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.episodeRepo.GetCount(); err == nil {
		health["missing_episodes"] = count
	}

	c.JSON(http.StatusOK, health)
}

// Podcasts

func (h *Handler) GetPodcast(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL parameter is required"})
		return
	}

	f, err := h.fetcher.Run(c.Request.Context(), url)
	if err != nil {
		slog.Error("Failed to fetch podcast feed", "url", url, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch podcast feed"})
		return
	}

	c.JSON(http.StatusOK, podcastResponse{
		Title:        f.Title,
		Link:         f.Link,
		Description:  f.Description,
		Author:       f.Author,
		Language:     f.Language,
		ImageURL:     f.Image(),
		EpisodeCount: len(f.Items),
	})
}

// GetEpisodes returns the reconciled episode list for a feed URL: live feed
// items merged with catalog episodes the feed doesn't carry. A catalog outage
// degrades to feed-only results inside the reconciler rather than failing
// the request.
func (h *Handler) GetEpisodes(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL parameter is required"})
		return
	}

	f, err := h.fetcher.Run(c.Request.Context(), url)
	if err != nil {
		slog.Error("Failed to fetch podcast feed", "url", url, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch podcast episodes"})
		return
	}

	c.JSON(http.StatusOK, h.reconciler.Run(f))
}

// Missing-episode catalog

func (h *Handler) ListMissingEpisodes(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Podcast name parameter is required"})
		return
	}

	var numbers []int
	if raw := c.Query("numbers"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid episode number: " + part})
				return
			}
			numbers = append(numbers, n)
		}
	}

	episodes, err := h.episodeRepo.FindByPodcast(name, numbers)
	if err != nil {
		slog.Error("Database error", "operation", "find_missing_episodes", "name", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch missing episodes"})
		return
	}

	c.JSON(http.StatusOK, newMissingEpisodeResponses(episodes))
}

func (h *Handler) ListAllMissingEpisodes(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Podcast name parameter is required"})
		return
	}

	episodes, err := h.episodeRepo.FindCandidates(name, feed.BaseName(name))
	if err != nil {
		slog.Error("Database error", "operation", "find_candidates", "name", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch missing episodes"})
		return
	}

	c.JSON(http.StatusOK, newMissingEpisodeResponses(episodes))
}

func (h *Handler) GetCatalogStats(c *gin.Context) {
	stats, err := h.episodeRepo.GetStatsByPodcast()
	if err != nil {
		slog.Error("Database error", "operation", "catalog_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch catalog stats"})
		return
	}

	total := 0
	podcasts := make([]gin.H, 0, len(stats))
	for _, s := range stats {
		total += s.EpisodeCount
		podcasts = append(podcasts, gin.H{
			"podcastName":  s.PodcastName,
			"episodeCount": s.EpisodeCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"totalCount": total,
		"podcasts":   podcasts,
	})
}

func (h *Handler) ImportMissingEpisodes(c *gin.Context) {
	var records []catalog.ImportRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON array of episode records"})
		return
	}

	c.JSON(http.StatusOK, h.importer.Run(records))
}

func (h *Handler) RederiveEpisodeNumbers(c *gin.Context) {
	summary, err := h.maintainer.RederiveNumbers()
	if err != nil {
		slog.Error("Catalog maintenance failed", "pass", "episode-numbers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update episode numbers"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) RederiveBaseNames(c *gin.Context) {
	summary, err := h.maintainer.RederiveNames()
	if err != nil {
		slog.Error("Catalog maintenance failed", "pass", "base-names", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update base names"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Auth

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email and password are required"})
		return
	}

	user, token, err := h.auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already in use"})
			return
		}
		slog.Error("Failed to register user", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": newUserResponse(user)})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		slog.Error("Failed to log in user", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": newUserResponse(user)})
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString(userIDKey)

	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		slog.Error("Database error", "operation", "get_user", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// Subscriptions

func (h *Handler) ListSubscriptions(c *gin.Context) {
	userID := c.GetString(userIDKey)

	subs, err := h.subscriptionRepo.GetForUser(userID)
	if err != nil {
		slog.Error("Database error", "operation", "get_subscriptions", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	out := make([]subscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, newSubscriptionResponse(sub))
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateSubscription(c *gin.Context) {
	userID := c.GetString(userIDKey)

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL and title are required"})
		return
	}

	sub, err := h.subscriptionRepo.Insert(database.Subscription{
		UserID:      userID,
		URL:         req.URL,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Already subscribed to this feed"})
			return
		}
		slog.Error("Database error", "operation", "insert_subscription", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe to podcast"})
		return
	}

	c.JSON(http.StatusCreated, newSubscriptionResponse(*sub))
}

func (h *Handler) DeleteSubscription(c *gin.Context) {
	userID := c.GetString(userIDKey)
	id := c.Param("id")

	deleted, err := h.subscriptionRepo.DeleteByID(id, userID)
	if err != nil {
		slog.Error("Database error", "operation", "delete_subscription", "user_id", userID, "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subscription"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
