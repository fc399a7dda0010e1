package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/mosaic-portal/mosaic/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	stdinIsTerminal = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	runWizard = config.RunWizard
)

// Init creates a service configuration file. On a terminal it runs the
// interactive wizard; otherwise it writes a commented starter file.
func Init(_ context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	if !stdinIsTerminal() {
		if err := os.WriteFile(outputPath, []byte(config.Template()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Starter configuration written to %s. Edit it before running serve.\n", outputPath)
		return nil
	}

	printWelcome()

	cfg, err := runWizard()
	if err != nil {
		return err
	}

	if err := cfg.WriteFile(outputPath); err != nil {
		return err
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Println()
	fmt.Println("mosaic - dataset template orchestrator")
	fmt.Println("======================================")
	fmt.Println()
	fmt.Println("This wizard creates a service configuration with sensible defaults.")
	fmt.Println("Secrets may be left empty and supplied via environment variables.")
	fmt.Println()
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()
	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Listen address: %s\n", cfg.Server.Addr)
	fmt.Printf("  NocoDB:         %s\n", cfg.NocoDB.BaseURL)
	fmt.Printf("  Grafana:        %s (datasource %s)\n", cfg.Grafana.BaseURL, cfg.Grafana.DatasourceUID)
	fmt.Println()
	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Export any secrets you left empty:")
	fmt.Println("     export NOCODB_TOKEN=<token>")
	fmt.Println("     export GRAFANA_TOKEN=<token>")
	fmt.Println()
	fmt.Printf("  2. Apply the database schema:\n     mosaic migrate -c %s\n", outputPath)
	fmt.Println()
	fmt.Printf("  3. Start the server:\n     mosaic serve -c %s\n", outputPath)
	fmt.Println()
}
