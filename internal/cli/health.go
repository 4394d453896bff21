package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cartographer/internal/client"
)

var healthTimeout time.Duration

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the analysis service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c := client.New(client.Options{
			BaseURL:    cfg.API.BaseURL,
			Timeout:    healthTimeout,
			UserAgent:  cfg.API.UserAgent,
			HTTPProxy:  cfg.API.HTTPProxy,
			HTTPSProxy: cfg.API.HTTPSProxy,
			Log:        logWriter(cfg),
		})

		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()

		if !c.Health(ctx) {
			fmt.Fprintf(os.Stderr, "✗ Service not reachable at %s\n", c.BaseURL())
			return ErrAnalysisFailed
		}
		fmt.Printf("✓ Service reachable at %s\n", c.BaseURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 5*time.Second, "probe timeout")
}
