package sources

import (
	"net/url"
	"strings"

	"github.com/ppiankov/cartographer/internal/model"
	"github.com/ppiankov/cartographer/internal/worker"
)

// AuthorityClassifier sorts source URLs into authority tiers
type AuthorityClassifier struct {
	domainMap map[string]model.AuthorityTier
	primary   []string
	secondary []string
}

// NewAuthorityClassifier creates a classifier from config, falling back to
// the built-in domain lists when config is nil
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Sources.Authority
	}

	classifier := &AuthorityClassifier{
		domainMap: make(map[string]model.AuthorityTier, len(config.DomainMap)),
		primary:   normalizeDomains(config.PrimaryDomains),
		secondary: normalizeDomains(config.SecondaryDomains),
	}
	for domain, tier := range config.DomainMap {
		classifier.domainMap[normalizeDomain(domain)] = parseTier(tier)
	}

	return classifier
}

// Classify returns the authority tier for a URL. Unparseable URLs are tertiary.
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Hostname() == "" {
		return model.TierTertiary
	}
	host := normalizeDomain(parsed.Hostname())

	// Explicit mappings win, first by exact host then by registrable domain
	if tier, ok := a.domainMap[host]; ok {
		return tier
	}
	if tier, ok := a.domainMap[worker.RegistrableDomain(host)]; ok {
		return tier
	}

	if matchesAny(host, a.primary) {
		return model.TierPrimary
	}
	if matchesAny(host, a.secondary) {
		return model.TierSecondary
	}

	// Government, military and academic suffixes
	for _, suffix := range []string{".gov", ".mil", ".edu", ".ac.uk"} {
		if strings.HasSuffix(host, suffix) {
			return model.TierPrimary
		}
	}

	return model.TierTertiary
}

// matchesAny reports whether host equals or is a subdomain of one of domains
func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = normalizeDomain(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func normalizeDomain(d string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
}

func parseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
