package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/temoto/robotstxt"
)

const (
	robotsCacheSize = 256
	maxRobotsBytes  = 512 << 10
)

// RobotsChecker answers robots.txt questions, remembering the parsed file
// of the most recently seen hosts
type RobotsChecker struct {
	cache      *lru.Cache[string, *robotstxt.RobotsData]
	httpClient *http.Client
	userAgent  string
	agent      string
}

// NewRobotsChecker creates a robots.txt checker sharing the given client
func NewRobotsChecker(httpClient *http.Client, userAgent string) *RobotsChecker {
	cache, _ := lru.New[string, *robotstxt.RobotsData](robotsCacheSize)
	return &RobotsChecker{
		cache:      cache,
		httpClient: httpClient,
		userAgent:  userAgent,
		agent:      ProductToken(userAgent),
	}
}

// CanFetch reports whether rawURL may be fetched and the crawl delay the
// host asks for. An unreachable robots.txt allows everything.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false, 0
	}

	key := parsed.Scheme + "://" + parsed.Host
	data, ok := r.cache.Get(key)
	if !ok {
		data, err = r.fetch(ctx, key+"/robots.txt")
		if err != nil {
			return true, 0
		}
		r.cache.Add(key, data)
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}

	allowed := data.TestAgent(path, r.agent)

	var delay time.Duration
	if group := data.FindGroup(r.agent); group != nil {
		delay = group.CrawlDelay
	}
	return allowed, delay
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	// 4xx allows everything, 5xx disallows everything
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}

// ProductToken reduces a User-Agent header to the product name used for
// robots.txt group matching ("Cartographer/0.1 (...)" -> "Cartographer")
func ProductToken(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return ua
	}
	return strings.SplitN(fields[0], "/", 2)[0]
}
