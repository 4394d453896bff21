package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var fetches int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			t.Errorf("unexpected request for %s", r.URL.Path)
			return
		}
		atomic.AddInt32(&fetches, 1)
		fmt.Fprint(w, "User-agent: Cartographer\nDisallow: /drafts\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n")
	}))
	defer server.Close()

	robots := NewRobotsChecker(server.Client(), "Cartographer/0.1 (+https://example.com)")
	ctx := context.Background()

	allowed, delay := robots.CanFetch(ctx, server.URL+"/articles/1")
	if !allowed {
		t.Error("expected /articles to be allowed for our agent")
	}
	if delay != 2*time.Second {
		t.Errorf("expected 2s crawl delay, got %v", delay)
	}

	if allowed, _ := robots.CanFetch(ctx, server.URL+"/drafts/x"); allowed {
		t.Error("expected /drafts to be disallowed")
	}

	if fetches != 1 {
		t.Errorf("expected robots.txt fetched once, got %d", fetches)
	}
}

func TestRobotsChecker_StatusHandling(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusNotFound, true},
		{http.StatusForbidden, true},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		robots := NewRobotsChecker(server.Client(), "Cartographer/0.1")
		if allowed, _ := robots.CanFetch(context.Background(), server.URL+"/page"); allowed != tt.want {
			t.Errorf("status %d: allowed = %v, want %v", tt.status, allowed, tt.want)
		}
		server.Close()
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	robots := NewRobotsChecker(&http.Client{Timeout: time.Second}, "Cartographer/0.1")
	if allowed, _ := robots.CanFetch(context.Background(), target+"/page"); !allowed {
		t.Error("expected unreachable robots.txt to allow fetching")
	}
}

func TestProductToken(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Cartographer/0.1 (+https://github.com/ppiankov/cartographer)", "Cartographer"},
		{"curl/8.0", "curl"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ProductToken(tt.ua); got != tt.want {
			t.Errorf("ProductToken(%q) = %q, want %q", tt.ua, got, tt.want)
		}
	}
}
