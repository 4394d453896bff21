package model

import "time"

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Official bodies, academic publishers
	TierSecondary AuthorityTier = 2 // Encyclopedias, wire services, major press
	TierTertiary  AuthorityTier = 3 // Everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON and YAML
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// SourceCheck is the result of inspecting one source URL
type SourceCheck struct {
	URL        string        `json:"url"`
	Domain     string        `json:"domain,omitempty"` // Registrable domain (eTLD+1)
	Authority  AuthorityTier `json:"authority"`
	Checked    bool          `json:"checked"`
	Reachable  bool          `json:"reachable"`
	StatusCode int           `json:"status_code,omitempty"`
	Title      string        `json:"title,omitempty"`
	Skipped    string        `json:"skipped,omitempty"` // Why the link was not fetched
	CheckedAt  time.Time     `json:"checked_at,omitempty"`
	Error      string        `json:"error,omitempty"`
}
