// Package sources inspects the source URLs returned with an argument map:
// authority tier, registrable domain and, optionally, reachability.
package sources

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/cartographer/internal/cache"
	"github.com/ppiankov/cartographer/internal/model"
	"github.com/ppiankov/cartographer/internal/util"
	"github.com/ppiankov/cartographer/internal/worker"
)

const (
	checkMaxRetries = 3
	maxPageBytes    = 1 << 20
)

// checkSleepFunc is the sleep function used between retries (injectable for tests)
var checkSleepFunc = time.Sleep

// Options configures a Checker
type Options struct {
	Config     model.SourcesConfig
	UserAgent  string
	HTTPProxy  string
	HTTPSProxy string
	Cache      cache.Cache // nil disables caching
	Log        io.Writer   // nil disables progress lines
}

// Checker classifies and optionally fetches source URLs. It never talks to
// the analysis backend.
type Checker struct {
	cfg        model.SourcesConfig
	userAgent  string
	httpClient *http.Client
	authority  *AuthorityClassifier
	limiter    *worker.Limiter
	robots     *RobotsChecker
	cache      cache.Cache
	log        io.Writer
	logMu      sync.Mutex
}

// NewChecker creates a source checker
func NewChecker(opts Options) *Checker {
	cfg := opts.Config
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultConfig().API.UserAgent
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	c := &Checker{
		cfg:        cfg,
		userAgent:  userAgent,
		httpClient: httpClient,
		authority:  NewAuthorityClassifier(&cfg.Authority),
		limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		cache:      opts.Cache,
		log:        opts.Log,
	}
	if cfg.RespectRobots {
		c.robots = NewRobotsChecker(httpClient, userAgent)
	}
	return c
}

// Classify fills in the authority tier and domain of a URL without fetching it
func (c *Checker) Classify(rawURL string) model.SourceCheck {
	check := model.SourceCheck{
		URL:       rawURL,
		Authority: c.authority.Classify(rawURL),
	}
	if parsed, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		check.Domain = worker.RegistrableDomain(parsed.Hostname())
	}
	return check
}

// Check inspects every URL, returning one result per input in input order.
// When checking is disabled the URLs are only classified.
func (c *Checker) Check(ctx context.Context, urls []string) []model.SourceCheck {
	checks := make([]model.SourceCheck, len(urls))
	if len(urls) == 0 {
		return checks
	}

	if !c.cfg.Check {
		for i, u := range urls {
			checks[i] = c.Classify(u)
			checks[i].Skipped = "checking disabled"
		}
		return checks
	}

	jobs := make([]worker.Job, len(urls))
	for i, u := range urls {
		rawURL := u
		jobs[i] = worker.JobFunc(func(ctx context.Context) worker.Result {
			return checkResult{check: c.checkOne(ctx, rawURL)}
		})
	}

	for i, r := range worker.Run(ctx, c.cfg.Workers, jobs) {
		if res, ok := r.(checkResult); ok {
			checks[i] = res.check
			continue
		}
		checks[i] = c.Classify(urls[i])
		checks[i].Error = "context cancelled"
	}
	return checks
}

type checkResult struct {
	check model.SourceCheck
}

func (r checkResult) GetError() error { return nil }

func (c *Checker) checkOne(ctx context.Context, rawURL string) model.SourceCheck {
	check := c.Classify(rawURL)

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		check.Skipped = "not an http(s) URL"
		return check
	}

	key := cache.CacheKey("source", parsed.String())
	if c.cache != nil {
		var cached model.SourceCheck
		if cache.GetJSON(c.cache, key, &cached) {
			c.logf("  ✓ %s (cached)\n", rawURL)
			return cached
		}
	}

	if c.robots != nil {
		allowed, crawlDelay := c.robots.CanFetch(ctx, parsed.String())
		if !allowed {
			check.Skipped = "disallowed by robots.txt"
			c.logf("  ⊘ %s (robots.txt)\n", rawURL)
			return check
		}
		c.limiter.ObserveCrawlDelay(parsed.String(), crawlDelay)
	}

	if err := c.limiter.Wait(ctx, parsed.String()); err != nil {
		check.Error = fmt.Sprintf("rate limit wait: %v", err)
		return check
	}

	check = c.fetchWithRetry(ctx, parsed.String(), check)
	if check.Reachable {
		c.logf("  ✓ %s (%d)\n", rawURL, check.StatusCode)
	} else {
		c.logf("  ✗ %s (%s)\n", rawURL, describeFailure(check))
	}

	if c.cache != nil && !isRetryable(check) {
		_ = cache.SetJSON(c.cache, key, check, c.cfg.Cache.DiskTTL)
	}
	return check
}

// fetchWithRetry retries transient failures with exponential backoff
func (c *Checker) fetchWithRetry(ctx context.Context, target string, base model.SourceCheck) model.SourceCheck {
	var check model.SourceCheck
	for attempt := 0; attempt < checkMaxRetries; attempt++ {
		check = c.fetch(ctx, target, base)
		if !isRetryable(check) || ctx.Err() != nil {
			return check
		}
		if attempt < checkMaxRetries-1 {
			checkSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return check
}

func (c *Checker) fetch(ctx context.Context, target string, check model.SourceCheck) model.SourceCheck {
	check.Checked = true
	check.CheckedAt = time.Now().UTC()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		check.Error = fmt.Sprintf("create request: %v", err)
		return check
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		check.Error = fmt.Sprintf("request failed: %v", err)
		return check
	}
	defer func() { _ = resp.Body.Close() }()

	check.StatusCode = resp.StatusCode
	check.Reachable = resp.StatusCode >= 200 && resp.StatusCode < 400
	if check.Reachable && isHTML(resp.Header.Get("Content-Type")) {
		check.Title = pageTitle(io.LimitReader(resp.Body, maxPageBytes))
	}
	return check
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// pageTitle extracts the document title, collapsing internal whitespace
func pageTitle(r io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ""
	}
	title := doc.Find("head title").First().Text()
	if title == "" {
		title = doc.Find("title").First().Text()
	}
	return strings.Join(strings.Fields(title), " ")
}

// isRetryable returns true for results that indicate transient failures
func isRetryable(check model.SourceCheck) bool {
	if check.StatusCode >= 500 && check.StatusCode < 600 {
		return true
	}
	if check.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if check.Error == "" {
		return false
	}
	s := strings.ToLower(check.Error)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

func describeFailure(check model.SourceCheck) string {
	if check.Error != "" {
		return check.Error
	}
	return fmt.Sprintf("status %d", check.StatusCode)
}

func (c *Checker) logf(format string, args ...interface{}) {
	if c.log == nil {
		return
	}
	c.logMu.Lock()
	defer c.logMu.Unlock()
	fmt.Fprintf(c.log, format, args...)
}

// GroupByDomain buckets checks by registrable domain, preserving input order
// within each bucket. Domains are returned in first-seen order.
func GroupByDomain(checks []model.SourceCheck) ([]string, map[string][]model.SourceCheck) {
	groups := make(map[string][]model.SourceCheck)
	var order []string
	for _, check := range checks {
		domain := check.Domain
		if domain == "" {
			domain = "(unknown)"
		}
		if _, seen := groups[domain]; !seen {
			order = append(order, domain)
		}
		groups[domain] = append(groups[domain], check)
	}
	return order, groups
}
