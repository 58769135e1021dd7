package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rbarros/podcast-hub/app/auth"
	"github.com/rbarros/podcast-hub/app/catalog"
	"github.com/rbarros/podcast-hub/app/database"
	"github.com/rbarros/podcast-hub/app/feed"
)

type fakeFetcher struct {
	feed *feed.Feed
	err  error
}

func (f *fakeFetcher) Run(_ context.Context, _ string) (*feed.Feed, error) {
	return f.feed, f.err
}

type fakeEpisodeRepo struct {
	episodes []database.MissingEpisode
	stats    []database.PodcastStats
	err      error

	lastPodcastName string
	lastBaseName    string
	lastNumbers     []int
}

func (r *fakeEpisodeRepo) FindCandidates(podcastName, baseName string) ([]database.MissingEpisode, error) {
	r.lastPodcastName = podcastName
	r.lastBaseName = baseName
	return r.episodes, r.err
}

func (r *fakeEpisodeRepo) FindByPodcast(podcastName string, numbers []int) ([]database.MissingEpisode, error) {
	r.lastPodcastName = podcastName
	r.lastNumbers = numbers
	return r.episodes, r.err
}

func (r *fakeEpisodeRepo) GetAll() ([]database.MissingEpisode, error) {
	return r.episodes, r.err
}

func (r *fakeEpisodeRepo) GetByTitle(title string) (*database.MissingEpisode, error) {
	for i := range r.episodes {
		if r.episodes[i].Title == title {
			return &r.episodes[i], nil
		}
	}
	return nil, nil
}

func (r *fakeEpisodeRepo) GetCount() (int, error) {
	return len(r.episodes), r.err
}

func (r *fakeEpisodeRepo) GetStatsByPodcast() ([]database.PodcastStats, error) {
	return r.stats, r.err
}

func (r *fakeEpisodeRepo) Insert(ep database.MissingEpisode) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.episodes = append(r.episodes, ep)
	return "generated-id", nil
}

func (r *fakeEpisodeRepo) UpdateDerived(_ string, _ *int, _, _ string) error {
	return r.err
}

type fakeSubscriptionRepo struct {
	subs      []database.Subscription
	insertErr error
	deleted   bool
}

func (r *fakeSubscriptionRepo) GetForUser(_ string) ([]database.Subscription, error) {
	return r.subs, nil
}

func (r *fakeSubscriptionRepo) Insert(sub database.Subscription) (*database.Subscription, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	sub.ID = "sub-1"
	sub.AddedAt = time.Now()
	r.subs = append(r.subs, sub)
	return &sub, nil
}

func (r *fakeSubscriptionRepo) DeleteByID(_, _ string) (bool, error) {
	return r.deleted, nil
}

type fakeUserRepo struct {
	users map[string]*database.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*database.User{}}
}

func (r *fakeUserRepo) GetByID(id string) (*database.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*database.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Insert(user database.User) (*database.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, database.ErrDuplicate
		}
	}
	user.ID = "user-" + user.Username
	user.CreatedAt = time.Now()
	r.users[user.ID] = &user
	return &user, nil
}

type testEnv struct {
	server       http.Handler
	authService  *auth.Auth
	episodeRepo  *fakeEpisodeRepo
	subscription *fakeSubscriptionRepo
	userRepo     *fakeUserRepo
	fetcher      *fakeFetcher
}

func newTestEnv() *testEnv {
	episodeRepo := &fakeEpisodeRepo{}
	subscriptionRepo := &fakeSubscriptionRepo{}
	userRepo := newFakeUserRepo()
	fetcher := &fakeFetcher{}

	authService := auth.NewAuth(userRepo, "test-secret", time.Hour)
	handler := NewHandler(fetcher, feed.NewReconciler(episodeRepo), episodeRepo,
		subscriptionRepo, userRepo,
		catalog.NewImporter(episodeRepo), catalog.NewMaintainer(episodeRepo),
		authService)

	return &testEnv{
		server:       NewServer(handler, authService, "*"),
		authService:  authService,
		episodeRepo:  episodeRepo,
		subscription: subscriptionRepo,
		userRepo:     userRepo,
		fetcher:      fetcher,
	}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registeredToken(t *testing.T) string {
	t.Helper()
	_, token, err := e.authService.Register("alice", "alice@example.com", "password1")
	if err != nil {
		t.Fatalf("register test user: %v", err)
	}
	return token
}

func TestGetEpisodesRequiresURL(t *testing.T) {
	env := newTestEnv()

	w := env.request(t, http.MethodGet, "/podcasts/episodes", "", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetEpisodesFetchFailure(t *testing.T) {
	env := newTestEnv()
	env.fetcher.err = errors.New("connection refused")

	w := env.request(t, http.MethodGet, "/podcasts/episodes?url=http://example.com/rss", "", nil)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func TestGetEpisodesMergesCatalog(t *testing.T) {
	env := newTestEnv()
	feedDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	catalogDate := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	env.fetcher.feed = &feed.Feed{
		Title: "Daily Show - Episode 100",
		Items: []feed.Item{
			{Title: "Daily Show - Episode 100", AudioURL: "http://cdn/100.mp3", PublishedAt: &feedDate},
		},
	}
	num := 42
	env.episodeRepo.episodes = []database.MissingEpisode{
		{Title: "Daily Show - Episode 42", AudioURL: "http://cdn/42.mp3", EpisodeNumber: &num, PublishDate: &catalogDate},
	}

	w := env.request(t, http.MethodGet, "/podcasts/episodes?url=http://example.com/rss", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var episodes []feed.Episode
	if err := json.Unmarshal(w.Body.Bytes(), &episodes); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("len(episodes) = %d, want 2", len(episodes))
	}
	if episodes[0].Source != feed.SourceFeed {
		t.Errorf("episodes[0].Source = %q, want %q", episodes[0].Source, feed.SourceFeed)
	}
	if episodes[1].Source != feed.SourceCatalog {
		t.Errorf("episodes[1].Source = %q, want %q", episodes[1].Source, feed.SourceCatalog)
	}
}

func TestGetPodcastReturnsMetadata(t *testing.T) {
	env := newTestEnv()
	env.fetcher.feed = &feed.Feed{
		Title:    "Daily Show",
		Author:   "The Hosts",
		ImageURL: "http://cdn/cover.jpg",
		Items:    []feed.Item{{Title: "Ep 1"}, {Title: "Ep 2"}},
	}

	w := env.request(t, http.MethodGet, "/podcasts?url=http://example.com/rss", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["title"] != "Daily Show" {
		t.Errorf("title = %v, want Daily Show", resp["title"])
	}
	if resp["episodeCount"] != float64(2) {
		t.Errorf("episodeCount = %v, want 2", resp["episodeCount"])
	}
}

func TestListMissingEpisodesRequiresName(t *testing.T) {
	env := newTestEnv()

	w := env.request(t, http.MethodGet, "/missing-episodes", "", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestListMissingEpisodesParsesNumbers(t *testing.T) {
	env := newTestEnv()

	w := env.request(t, http.MethodGet, "/missing-episodes?name=Daily+Show&numbers=1,2,3", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(env.episodeRepo.lastNumbers) != 3 || env.episodeRepo.lastNumbers[2] != 3 {
		t.Errorf("numbers = %v, want [1 2 3]", env.episodeRepo.lastNumbers)
	}
	if env.episodeRepo.lastPodcastName != "Daily Show" {
		t.Errorf("podcast name = %q, want Daily Show", env.episodeRepo.lastPodcastName)
	}
}

func TestListMissingEpisodesRejectsBadNumbers(t *testing.T) {
	env := newTestEnv()

	w := env.request(t, http.MethodGet, "/missing-episodes?name=Daily+Show&numbers=1,abc", "", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestListAllMissingEpisodesDerivesBaseName(t *testing.T) {
	env := newTestEnv()

	w := env.request(t, http.MethodGet, "/missing-episodes/all?name=Daily+Show+Extended", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if env.episodeRepo.lastBaseName != "Daily" {
		t.Errorf("base name = %q, want Daily", env.episodeRepo.lastBaseName)
	}
}

func TestImportMissingEpisodes(t *testing.T) {
	env := newTestEnv()

	records := []catalog.ImportRecord{
		{Title: "Daily Show - Episode 7", AudioURL: "http://cdn/7.mp3"},
	}
	w := env.request(t, http.MethodPost, "/missing-episodes/import", "", records)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var summary catalog.ImportSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if summary.ImportedCount != 1 {
		t.Errorf("ImportedCount = %d, want 1", summary.ImportedCount)
	}
}

func TestImportMissingEpisodesRejectsInvalidBody(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/missing-episodes/import", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv()

	w := env.request(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	w = env.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}
	if resp.Token == "" {
		t.Error("login response missing token")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv()
	env.registeredToken(t)

	w := env.request(t, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password1",
	})

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv()
	env.registeredToken(t)

	w := env.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestSubscriptionsRequireAuth(t *testing.T) {
	env := newTestEnv()

	w := env.request(t, http.MethodGet, "/subscriptions", "", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestCreateSubscription(t *testing.T) {
	env := newTestEnv()
	token := env.registeredToken(t)

	w := env.request(t, http.MethodPost, "/subscriptions", token, map[string]string{
		"url":   "http://example.com/rss",
		"title": "Daily Show",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestCreateSubscriptionDuplicate(t *testing.T) {
	env := newTestEnv()
	token := env.registeredToken(t)
	env.subscription.insertErr = database.ErrDuplicate

	w := env.request(t, http.MethodPost, "/subscriptions", token, map[string]string{
		"url":   "http://example.com/rss",
		"title": "Daily Show",
	})

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestDeleteSubscriptionNotFound(t *testing.T) {
	env := newTestEnv()
	token := env.registeredToken(t)

	w := env.request(t, http.MethodDelete, "/subscriptions/missing-id", token, nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestDeleteSubscription(t *testing.T) {
	env := newTestEnv()
	token := env.registeredToken(t)
	env.subscription.deleted = true

	w := env.request(t, http.MethodDelete, "/subscriptions/sub-1", token, nil)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestGetCatalogStats(t *testing.T) {
	env := newTestEnv()
	env.episodeRepo.stats = []database.PodcastStats{
		{PodcastName: "Daily Show", EpisodeCount: 12},
		{PodcastName: "Night Show", EpisodeCount: 3},
	}

	w := env.request(t, http.MethodGet, "/missing-episodes/stats", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp struct {
		TotalCount int `json:"totalCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if resp.TotalCount != 15 {
		t.Errorf("totalCount = %d, want 15", resp.TotalCount)
	}
}
