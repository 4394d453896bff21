package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/cartographer/internal/model"
)

var (
	configFormat string
	configForce  bool
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Cartographer configuration",
	Long: `Manage Cartographer configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CARTOGRAPHER_*, also read from .env)
3. Config file (~/.cartographer/config.yaml or config.toml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Display the configuration after merging defaults, config file, environment and flags. API keys are never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		data, err := encodeConfig(cfg, configFormat)
		if err != nil {
			return err
		}
		fmt.Print(string(data))

		if cfg.LLM.APIKey != "" {
			fmt.Fprintf(os.Stderr, "\nLLM API key: set (hidden)\n")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create ~/.cartographer/config.yaml (or config.toml with --format toml) holding every option at its default value.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		ext := "yaml"
		if configFormat == "toml" {
			ext = "toml"
		}
		configPath := filepath.Join(dir, "config."+ext)

		if _, err := os.Stat(configPath); err == nil && !configForce {
			return fmt.Errorf("config file already exists: %s\nUse 'cartographer config show' to view it, or --force to overwrite", configPath)
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		body, err := encodeConfig(model.DefaultConfig(), configFormat)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		buf.WriteString("# Cartographer configuration\n")
		buf.WriteString("#\n")
		buf.WriteString("# Configuration hierarchy (highest to lowest priority):\n")
		buf.WriteString("#   1. CLI flags\n")
		buf.WriteString("#   2. Environment variables (CARTOGRAPHER_*, e.g. CARTOGRAPHER_API_URL)\n")
		buf.WriteString("#   3. This config file\n")
		buf.WriteString("#   4. Built-in defaults\n")
		buf.WriteString("#\n")
		buf.WriteString("# Keep API keys out of this file:\n")
		buf.WriteString("#   export OPENAI_API_KEY=sk-...\n\n")
		buf.Write(body)

		if err := os.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("error writing config file: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  cartographer config show\n")
		fmt.Printf("\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configCmd.PersistentFlags().StringVar(&configFormat, "format", "yaml", "output format: yaml or toml")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
}

// encodeConfig renders cfg as YAML or TOML. TOML goes through the YAML
// form so durations read as "2m30s" in both formats.
func encodeConfig(cfg *model.Config, format string) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("error marshaling config: %w", err)
	}

	switch format {
	case "", "yaml", "yml":
		return data, nil
	case "toml":
		var tree map[string]interface{}
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("error converting config: %w", err)
		}
		out, err := toml.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("error marshaling config: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown format %q (yaml, toml)", format)
	}
}
