package model

import "time"

// Config is the complete cartographer configuration
type Config struct {
	API     APIConfig     `yaml:"api" toml:"api" mapstructure:"api"`
	Input   InputConfig   `yaml:"input" toml:"input" mapstructure:"input"`
	Sources SourcesConfig `yaml:"sources" toml:"sources" mapstructure:"sources"`
	Output  OutputConfig  `yaml:"output" toml:"output" mapstructure:"output"`
	LLM     LLMConfig     `yaml:"llm" toml:"llm" mapstructure:"llm"`
}

// APIConfig describes how to reach the analysis service
type APIConfig struct {
	BaseURL    string        `yaml:"base_url" toml:"base_url" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" toml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" toml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" toml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" toml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// InputConfig bounds what the input collector accepts
type InputConfig struct {
	MaxFileBytes int64 `yaml:"max_file_bytes" toml:"max_file_bytes" mapstructure:"max_file_bytes"`
}

// SourcesConfig controls the optional source link checker
type SourcesConfig struct {
	Check             bool            `yaml:"check" toml:"check" mapstructure:"check"`
	Workers           int             `yaml:"workers" toml:"workers" mapstructure:"workers"`
	Timeout           time.Duration   `yaml:"timeout" toml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64         `yaml:"requests_per_second" toml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int             `yaml:"burst" toml:"burst" mapstructure:"burst"`
	RespectRobots     bool            `yaml:"respect_robots" toml:"respect_robots" mapstructure:"respect_robots"`
	Cache             CacheConfig     `yaml:"cache" toml:"cache" mapstructure:"cache"`
	Authority         AuthorityConfig `yaml:"authority" toml:"authority" mapstructure:"authority"`
}

// CacheConfig controls caching of source check results
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" toml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" toml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" toml:"disk_ttl" mapstructure:"disk_ttl"`
}

// AuthorityConfig maps source domains to authority tiers
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" toml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" toml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" toml:"domain_map,omitempty" mapstructure:"domain_map"`
}

// OutputConfig controls presentation
type OutputConfig struct {
	Style   string `yaml:"style" toml:"style" mapstructure:"style"`
	Verbose bool   `yaml:"verbose" toml:"verbose" mapstructure:"verbose"`
}

// LLMConfig configures the optional narrative summary
type LLMConfig struct {
	Provider  string `yaml:"provider" toml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" toml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" toml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" toml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" toml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" toml:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:5000",
			Timeout:   150 * time.Second, // backend gives the model 120s
			UserAgent: "Cartographer/0.1 (+https://github.com/ppiankov/cartographer)",
		},
		Input: InputConfig{
			MaxFileBytes: MaxDocumentBytes,
		},
		Sources: SourcesConfig{
			Check:             false,
			Workers:           8,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
			RespectRobots:     true,
			Cache: CacheConfig{
				Enabled:   true,
				Dir:       "",
				MemoryTTL: time.Hour,
				DiskTTL:   24 * time.Hour,
			},
			Authority: AuthorityConfig{
				PrimaryDomains: []string{
					"gov", "gov.uk", "europa.eu", "un.org", "who.int",
					"nih.gov", "arxiv.org", "doi.org", "nature.com", "science.org",
				},
				SecondaryDomains: []string{
					"wikipedia.org", "britannica.com", "reuters.com", "apnews.com",
					"bbc.co.uk", "bbc.com", "nytimes.com", "theguardian.com",
				},
			},
		},
		Output: OutputConfig{
			Style: string(StyleClassicTree),
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 600,
		},
	}
}
