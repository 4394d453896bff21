package worker

import (
	"context"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Limiter paces requests per registrable domain. Hosts under one domain
// (news.example.co.uk, www.example.co.uk) draw from the same bucket, and a
// robots.txt crawl delay slows the whole domain rather than one worker.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter allowing requestsPerSecond per domain.
// A non-positive rate means unlimited.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until a request to rawURL may proceed
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	domain, err := extractDomain(rawURL)
	if err != nil {
		return err
	}
	return l.forDomain(domain).Wait(ctx)
}

// Allow reports whether a request to rawURL may proceed now, consuming a
// token if so
func (l *Limiter) Allow(rawURL string) bool {
	domain, err := extractDomain(rawURL)
	if err != nil {
		return false
	}
	return l.forDomain(domain).Allow()
}

// ObserveCrawlDelay spaces further requests to rawURL's domain at least
// delay apart. It never speeds a domain up.
func (l *Limiter) ObserveCrawlDelay(rawURL string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	domain, err := extractDomain(rawURL)
	if err != nil {
		return
	}

	limit := rate.Every(delay)
	lim := l.forDomain(domain)

	l.mu.Lock()
	defer l.mu.Unlock()
	if limit < lim.Limit() {
		lim.SetLimit(limit)
		lim.SetBurst(1)
	}
}

// Domains reports how many domains have been seen
func (l *Limiter) Domains() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *Limiter) forDomain(domain string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[domain]
	if !ok {
		lim = rate.NewLimiter(l.defaultRate, l.defaultBurst)
		l.limiters[domain] = lim
	}
	return lim
}

// extractDomain returns the registrable domain of a URL, or the bare host
// when it has none (localhost, IP addresses)
func extractDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return RegistrableDomain(parsed.Hostname()), nil
}

// RegistrableDomain reduces a host name to its eTLD+1
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
