package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/thomashgnt/driverjobpost/internal/pipeline"
	"github.com/thomashgnt/driverjobpost/internal/worker"
)

var (
	batchFlags runFlags
	batchDelay time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Resolve decision makers for every posting in a file",
	Long: `Batch resolves postings one after another:
- Read postings from a YAML list, or from a text file with one
  company|contact name|contact email|domain|job url per line
- Pause between postings, and for a minute after three failures in a row
- On rate limit exhaustion, cool down for five minutes and retry once;
  a second exhaustion stops the batch
- Write one JSON report per posting and send each result to the webhooks

Example:
  driverjobpost batch postings.yaml
  driverjobpost batch companies.txt --delay 3s --output-dir ./reports
  driverjobpost batch postings.yaml --no-notify --timeout 12h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().DurationVar(&batchDelay, "delay", 0, "pause between postings (default from config)")
	addRunFlags(batchCmd, &batchFlags, 6*time.Hour)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := batchFlags.configure()
	if err != nil {
		return err
	}
	if batchDelay > 0 {
		cfg.Batch.Delay = batchDelay
	}

	postings, err := worker.ReadPostingsFromFile(file)
	if err != nil {
		return fmt.Errorf("read postings: %w", err)
	}
	if len(postings) == 0 {
		return fmt.Errorf("no postings in %s", file)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, batchFlags.timeout)
	defer cancel()

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  driverjobpost Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Postings:     %d\n", len(postings))
	fmt.Fprintf(os.Stderr, "  Delay:        %v\n", cfg.Batch.Delay)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "  Webhooks:     %v\n", rt.notifier != nil)
	fmt.Fprintf(os.Stderr, "\n")

	var people, written int
	runner := pipeline.NewBatchRunner(rt.resolver, rt.shared.Counter, rt.publisher(), pipeline.BatchOptionsFromConfig(cfg), rt.logger)
	runner.OnOutcome = func(o pipeline.BatchOutcome) {
		prefix := fmt.Sprintf("[%d/%d]", o.Index+1, len(postings))
		if o.Err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s %s: %v\n", prefix, o.Posting.CompanyName, o.Err)
			return
		}

		path := pipeline.ReportPath(cfg.Output.Dir, o.Result)
		if err := rt.renderer.RenderJSON(o.Result, path); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s %s: failed to write JSON: %v\n", prefix, o.Posting.CompanyName, err)
			return
		}
		written++
		people += len(o.Result.People)

		fmt.Fprintf(os.Stderr, "✓ %s %s: %d people (%d high)\n",
			prefix, o.Result.Company, len(o.Result.People), o.Result.HighConfidence())
		if cfg.Output.Verbose {
			rt.renderer.RenderSummary(o.Result)
		}
	}

	outcomes, runErr := runner.Run(ctx, postings)

	failures := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failures++
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "  Batch Stopped\n")
	} else {
		fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	}
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:      %d postings\n", len(postings))
	fmt.Fprintf(os.Stderr, "  Processed:  %d\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Reports:    %d\n", written)
	fmt.Fprintf(os.Stderr, "  Failures:   %d\n", failures)
	fmt.Fprintf(os.Stderr, "  People:     %d\n", people)
	fmt.Fprintf(os.Stderr, "  Output:     %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	if runErr != nil {
		return fmt.Errorf("batch stopped after %d of %d postings: %w", len(outcomes), len(postings), runErr)
	}
	return nil
}
