package sources

import (
	"testing"

	"github.com/ppiankov/cartographer/internal/model"
)

func TestAuthorityClassifier_Classify(t *testing.T) {
	classifier := NewAuthorityClassifier(&model.AuthorityConfig{
		PrimaryDomains:   []string{"legislation.gov.uk", "doi.org"},
		SecondaryDomains: []string{"Wikipedia.org"},
		DomainMap: map[string]string{
			"blog.example.com": "secondary",
			"trusted.org":      "1",
		},
	})

	tests := []struct {
		desc string
		url  string
		want model.AuthorityTier
	}{
		{"primary exact", "https://legislation.gov.uk/ukpga/1998/42", model.TierPrimary},
		{"primary subdomain", "https://www.legislation.gov.uk/statute", model.TierPrimary},
		{"primary with port", "https://doi.org:443/10.1234/x", model.TierPrimary},
		{"secondary case-insensitive", "https://EN.wikipedia.org/wiki/Logic", model.TierSecondary},
		{"explicit host mapping", "https://blog.example.com/post", model.TierSecondary},
		{"explicit registrable mapping", "https://docs.trusted.org/a", model.TierPrimary},
		{"gov suffix", "https://www.cdc.gov/data", model.TierPrimary},
		{"edu suffix", "https://cs.stanford.edu/paper", model.TierPrimary},
		{"academic uk", "https://www.ox.ac.uk/research", model.TierPrimary},
		{"lookalike is not subdomain", "https://notwikipedia.org/x", model.TierTertiary},
		{"unknown", "https://random-blog.net/post", model.TierTertiary},
		{"unparseable", "::not a url", model.TierTertiary},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.Classify(tt.url); got != tt.want {
				t.Errorf("Classify(%s) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestAuthorityClassifier_DefaultConfig(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)

	if got := classifier.Classify("https://www.reuters.com/world"); got != model.TierSecondary {
		t.Errorf("expected secondary for reuters, got %v", got)
	}
	if got := classifier.Classify("https://arxiv.org/abs/2401.00001"); got != model.TierPrimary {
		t.Errorf("expected primary for arxiv, got %v", got)
	}
}

func TestParseTier(t *testing.T) {
	tests := map[string]model.AuthorityTier{
		"primary":   model.TierPrimary,
		" Primary ": model.TierPrimary,
		"2":         model.TierSecondary,
		"tertiary":  model.TierTertiary,
		"bogus":     model.TierTertiary,
	}
	for in, want := range tests {
		if got := parseTier(in); got != want {
			t.Errorf("parseTier(%q) = %v, want %v", in, got, want)
		}
	}
}
