package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/thomashgnt/driverjobpost/internal/model"
	"github.com/thomashgnt/driverjobpost/internal/pipeline"
)

var (
	resolveFlags   runFlags
	resolvePosting model.JobPosting
	outJSON        string
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <company>",
	Short: "Find decision makers for one company",
	Long: `Resolve searches for the decision makers of one trucking company:
- Find the company website when no domain is given
- Look up the title of the contact named in the job posting
- Search professional-network profiles and the web for owners, hiring
  staff, and operations or fleet managers
- Read the company's team pages
- Merge, rank, and keep the top 5

Example:
  driverjobpost resolve "Riverside Transport"
  driverjobpost resolve "Acme Trucking LLC" --contact "Jane Doe" --job-url https://example.com/jobs/1
  driverjobpost resolve "Acme Trucking LLC" --structured llm --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	// Posting flags
	resolveCmd.Flags().StringVar(&resolvePosting.CompanyDomain, "domain", "", "company website (skips domain discovery)")
	resolveCmd.Flags().StringVar(&resolvePosting.ContactName, "contact", "", "contact person named in the posting")
	resolveCmd.Flags().StringVar(&resolvePosting.ContactEmail, "contact-email", "", "contact email from the posting")
	resolveCmd.Flags().StringVar(&resolvePosting.JobURL, "job-url", "", "job posting URL")
	resolveCmd.Flags().StringVar(&resolvePosting.JobTitle, "job-title", "", "job posting title")

	// Output flags
	resolveCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: <output-dir>/<company>-<run>.json)")

	addRunFlags(resolveCmd, &resolveFlags, 10*time.Minute)
}

func runResolve(cmd *cobra.Command, args []string) error {
	resolvePosting.CompanyName = args[0]

	cfg, err := resolveFlags.configure()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, resolveFlags.timeout)
	defer cancel()

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Resolving: %s\n", resolvePosting.CompanyName)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", resolveFlags.timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintf(os.Stderr, "Backends: structured=%s fetch=%s\n", cfg.Structured.Backend, cfg.Fetch.Backend)
		fmt.Fprintln(os.Stderr)
	}

	result, err := rt.resolver.Resolve(ctx, resolvePosting)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	path := outJSON
	if path == "" {
		path = pipeline.ReportPath(cfg.Output.Dir, result)
	}
	if err := rt.renderer.RenderJSON(result, path); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", path)
	}

	rt.notifier.Publish(ctx, resolvePosting, result)
	rt.renderer.RenderSummary(result)
	return nil
}
