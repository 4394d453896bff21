package model

import "time"

// Report is everything produced by one successful analysis attempt,
// ready for rendering
type Report struct {
	AttemptID    string             `json:"attempt_id"`
	Question     string             `json:"question"`
	Mode         InputMode          `json:"mode"`
	Style        VisualizationStyle `json:"style"`
	CompletedAt  time.Time          `json:"completed_at"`
	Map          ArgumentMap        `json:"argument_map"`
	Sources      []string           `json:"sources"`
	Diagnostics  Diagnostics        `json:"diagnostics"`
	SourceChecks []SourceCheck      `json:"source_checks,omitempty"`
	Summary      *Summary           `json:"summary,omitempty"`
}

// Diagnostics describes the structure of a returned argument map
type Diagnostics struct {
	Counts            map[ElementType]int `json:"counts"`
	Depth             int                 `json:"depth"`
	UnsupportedClaims []string            `json:"unsupported_claims,omitempty"`
	Signals           []Signal            `json:"signals"`
}

// Signal is a single structural observation about a map
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a diagnostic signal
type SignalType string

const (
	SignalDuplicateID      SignalType = "duplicate_id"
	SignalDanglingParent   SignalType = "dangling_parent"
	SignalCycle            SignalType = "cycle"
	SignalRoot             SignalType = "root"
	SignalUnknownType      SignalType = "unknown_type"
	SignalEvidenceCoverage SignalType = "evidence_coverage"
	SignalFallacies        SignalType = "fallacies"
	SignalEmptyMap         SignalType = "empty_map"
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Summary is an optional LLM-written narrative of the map.
// It is kept separate from the map and never alters it.
type Summary struct {
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	Text      string   `json:"text"`
	CitedURLs []string `json:"cited_urls,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
