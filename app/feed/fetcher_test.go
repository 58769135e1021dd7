package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcherRun(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(podcastRSS))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Podcast Hub Test/1.0", 5*time.Second)
	feed, err := fetcher.Run(context.Background(), server.URL)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed.Title != "99Vidas Podcast" {
		t.Errorf("Expected title '99Vidas Podcast', got: %s", feed.Title)
	}
	if len(feed.Items) != 2 {
		t.Errorf("Expected 2 items, got: %d", len(feed.Items))
	}
	if gotUserAgent != "Podcast Hub Test/1.0" {
		t.Errorf("Expected custom user agent, got: %s", gotUserAgent)
	}
}

func TestFetcherRunHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Podcast Hub Test/1.0", 5*time.Second)
	_, err := fetcher.Run(context.Background(), server.URL)

	if err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestFetcherRunTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Podcast Hub Test/1.0", 10*time.Millisecond)
	_, err := fetcher.Run(context.Background(), server.URL)

	if err == nil {
		t.Error("Expected timeout error")
	}
}
