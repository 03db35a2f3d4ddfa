package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

const maxSlugRunes = 100

const ruleLine = "═══════════════════════════════════════════════════════════"

// Renderer writes resolution reports to disk and summaries to a terminal
type Renderer struct {
	out     io.Writer
	verbose bool
}

// NewRenderer creates a renderer printing summaries to out
func NewRenderer(out io.Writer, verbose bool) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out, verbose: verbose}
}

// RenderJSON writes the result as indented JSON, creating parent directories
func (r *Renderer) RenderJSON(result *model.ResolutionResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummary prints the people found, grouped by category
func (r *Renderer) RenderSummary(result *model.ResolutionResult) {
	printf := func(format string, args ...any) {
		_, _ = fmt.Fprintf(r.out, format, args...)
	}

	printf("\n%s\n", ruleLine)
	if result.Domain != "" {
		printf("  %s (%s)\n", result.Company, result.Domain)
	} else {
		printf("  %s\n", result.Company)
	}
	printf("%s\n\n", ruleLine)

	printf("  Decision makers: %d (%d high confidence)\n", len(result.People), result.HighConfidence())
	printf("  Candidates:      %d merged\n", result.Candidates)
	if result.Fallback {
		printf("  Fallback:        used\n")
	}
	if r.verbose {
		printf("  Run:             %s\n", result.RunID)
		printf("  Duration:        %s\n", result.Duration.Round(time.Millisecond))
	}
	printf("\n")

	if len(result.People) == 0 {
		printf("  No decision makers found\n\n")
	}

	groups := result.ByCategory()
	for _, category := range model.Categories() {
		people := groups[category]
		if len(people) == 0 {
			continue
		}
		printf("  %s\n", category)
		for _, p := range people {
			mark := "·"
			if p.Confidence == model.ConfidenceHigh {
				mark = "✓"
			}
			printf("    %s %s - %s [%s, %s]\n", mark, p.Name, p.Title, p.Confidence, p.SourceKind)
			if p.ProfileURL != "" {
				printf("        %s\n", p.ProfileURL)
			}
		}
		printf("\n")
	}

	if len(result.Errors) > 0 {
		printf("  ⚠ %d queries returned no evidence\n", len(result.Errors))
		if r.verbose {
			for _, e := range result.Errors {
				printf("    - %s\n", e)
			}
		}
		printf("\n")
	}
}

// ReportPath returns the report file path for result inside dir
func ReportPath(dir string, result *model.ResolutionResult) string {
	name := Slug(result.Company)
	if name == "" {
		name = "report"
	}
	if id := result.RunID; len(id) >= 8 {
		name += "-" + id[:8]
	}
	return filepath.Join(dir, name+".json")
}

// Slug lowercases s and keeps letters and digits, joining words with dashes
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	out := []rune(b.String())
	if len(out) > maxSlugRunes {
		return strings.TrimRight(string(out[:maxSlugRunes]), "-")
	}
	return string(out)
}
