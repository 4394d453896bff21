package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/cartographer/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

// ErrAnalysisFailed is returned after a failed attempt has already been
// reported to the user
var ErrAnalysisFailed = errors.New("analysis failed")

var (
	cfgFile string
	verbose bool
	apiURL  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cartographer",
	Short: "Cartographer - map the structure of an argument",
	Long: `Cartographer sends a question, optionally with pasted text, a URL or a
document, to an argument analysis service and shows the returned
argument map: thesis, supporting claims, evidence, counterclaims and
logical fallacies.

It does not judge whether an argument is right. It shows how it is built.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cartographer %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.cartographer/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "analysis service base URL (default: http://localhost:5000)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and CARTOGRAPHER_* variables
func initConfig() {
	// A missing .env file is the common case
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := configDir(); err == nil {
		// config.yaml or config.toml
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
	} else {
		fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
	}

	configureEnv(viper.GetViper())
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read config file %s: %v\n", cfgFile, err)
	}
}

// configureEnv maps CARTOGRAPHER_SECTION_KEY variables onto section.key
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("CARTOGRAPHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.base_url", "CARTOGRAPHER_API_URL", "CARTOGRAPHER_API_BASE_URL")
	_ = v.BindEnv("llm.api_key", "CARTOGRAPHER_LLM_API_KEY", "OPENAI_API_KEY")
}

// setDefaults registers every config key so that environment variables
// are seen by Unmarshal even when no config file mentions them
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.user_agent", d.API.UserAgent)
	v.SetDefault("api.http_proxy", d.API.HTTPProxy)
	v.SetDefault("api.https_proxy", d.API.HTTPSProxy)

	v.SetDefault("input.max_file_bytes", d.Input.MaxFileBytes)

	v.SetDefault("sources.check", d.Sources.Check)
	v.SetDefault("sources.workers", d.Sources.Workers)
	v.SetDefault("sources.timeout", d.Sources.Timeout)
	v.SetDefault("sources.requests_per_second", d.Sources.RequestsPerSecond)
	v.SetDefault("sources.burst", d.Sources.Burst)
	v.SetDefault("sources.respect_robots", d.Sources.RespectRobots)
	v.SetDefault("sources.cache.enabled", d.Sources.Cache.Enabled)
	v.SetDefault("sources.cache.dir", d.Sources.Cache.Dir)
	v.SetDefault("sources.cache.memory_ttl", d.Sources.Cache.MemoryTTL)
	v.SetDefault("sources.cache.disk_ttl", d.Sources.Cache.DiskTTL)
	v.SetDefault("sources.authority.primary_domains", d.Sources.Authority.PrimaryDomains)
	v.SetDefault("sources.authority.secondary_domains", d.Sources.Authority.SecondaryDomains)

	v.SetDefault("output.style", d.Output.Style)
	v.SetDefault("output.verbose", d.Output.Verbose)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
}

// loadConfig resolves the effective configuration from viper
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	style, ok := model.ParseStyle(cfg.Output.Style)
	if !ok {
		return nil, fmt.Errorf("invalid output.style %q (Classic Tree, Org Chart, Pillar View)", cfg.Output.Style)
	}
	cfg.Output.Style = string(style)
	return cfg, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cartographer"), nil
}

// logWriter returns stderr when verbose output is on, nil otherwise
func logWriter(cfg *model.Config) io.Writer {
	if cfg.Output.Verbose {
		return os.Stderr
	}
	return nil
}
