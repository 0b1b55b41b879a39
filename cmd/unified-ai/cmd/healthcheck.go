package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"github.com/sabio/unified-ai-frontend/pkg/config"
)

// healthcheckCmd probes the local /health endpoint. Container runtimes use
// it as the liveness/readiness command.
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe the local gateway health endpoint",
	RunE:  runHealthcheck,
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}

func runHealthcheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	client := resty.New()
	client.SetTimeout(5 * time.Second)

	resp, err := client.R().Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Port))
	if err != nil {
		return fmt.Errorf("health probe failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("gateway unhealthy: status %d", resp.StatusCode())
	}

	fmt.Println("ok")
	return nil
}
