package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage driverjobpost configuration",
	Long: `Manage driverjobpost configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (DRIVERJOBPOST_*)
3. Config file (~/.driverjobpost/config.yaml)
4. Defaults

API keys and webhook URLs are read from the environment only.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration (defaults merged with the config file). Secrets are never printed.`,
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

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Println(string(yamlData))

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println("Environment:")
		fmt.Printf("  LINKUP_API_KEY         %s\n", setOrMissing(cfg.Linkup.APIKey))
		fmt.Printf("  OPENAI_API_KEY         %s\n", setOrMissing(os.Getenv("OPENAI_API_KEY")))
		fmt.Printf("  CLAY_JOBS_WEBHOOK      %s\n", setOrMissing(cfg.Notify.JobsWebhook))
		fmt.Printf("  CLAY_CONTACTS_WEBHOOK  %s\n", setOrMissing(cfg.Notify.ContactsWebhook))
		fmt.Println()

		return nil
	},
}

func setOrMissing(v string) string {
	if v == "" {
		return "not set"
	}
	return "set"
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.driverjobpost/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".driverjobpost")
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'driverjobpost config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		// Helper for writing with error checking
		printf := func(format string, a ...any) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(f, format, a...)
		}

		printf("# driverjobpost configuration\n")
		printf("#\n")
		printf("# Configuration hierarchy (highest to lowest priority):\n")
		printf("#   1. CLI flags\n")
		printf("#   2. Environment variables (DRIVERJOBPOST_*)\n")
		printf("#   3. This config file\n")
		printf("#   4. Built-in defaults\n\n")
		printf("%s", yamlData)
		printf("\n# Secrets are read from the environment only:\n")
		printf("#   export LINKUP_API_KEY=...\n")
		printf("#   export OPENAI_API_KEY=sk-...          # structured.backend: llm, llm.provider: openai\n")
		printf("#   export OLLAMA_BASE_URL=http://localhost:11434/v1\n")
		printf("#   export CLAY_JOBS_WEBHOOK=https://...\n")
		printf("#   export CLAY_CONTACTS_WEBHOOK=https://...\n")
		printf("#\n")
		printf("# Tracing (optional):\n")
		printf("#   export DRIVERJOBPOST_OTEL_ENDPOINT=http://localhost:4318\n")

		if err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  driverjobpost config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n", configPath)
		fmt.Printf("\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
