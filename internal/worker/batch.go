package worker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// ReadPostingsFromFile reads job postings for a batch run.
//
// YAML files (.yaml, .yml) hold a list of postings. Any other file is read
// line by line in the form:
//
//	company|contact name|contact email|domain|job url
//
// Only the company is required. Empty lines and lines starting with # are
// skipped, and duplicate company/contact pairs are dropped.
func ReadPostingsFromFile(filePath string) ([]model.JobPosting, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return readPostingsYAML(filePath)
	default:
		return readPostingsLines(filePath)
	}
}

func readPostingsYAML(filePath string) ([]model.JobPosting, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var postings []model.JobPosting
	if err := yaml.Unmarshal(data, &postings); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return dedupePostings(postings), nil
}

func readPostingsLines(filePath string) ([]model.JobPosting, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var postings []model.JobPosting

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		posting, ok := ParsePostingLine(line)
		if ok {
			postings = append(postings, posting)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return dedupePostings(postings), nil
}

// ParsePostingLine parses one pipe-separated batch line
func ParsePostingLine(line string) (model.JobPosting, bool) {
	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	posting := model.JobPosting{
		CompanyName:   field(0),
		ContactName:   field(1),
		ContactEmail:  field(2),
		CompanyDomain: field(3),
		JobURL:        field(4),
	}
	if posting.CompanyName == "" {
		return model.JobPosting{}, false
	}
	return posting, true
}

func dedupePostings(postings []model.JobPosting) []model.JobPosting {
	seen := make(map[string]bool)
	out := make([]model.JobPosting, 0, len(postings))
	for _, p := range postings {
		if strings.TrimSpace(p.CompanyName) == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p.CompanyName)) + "|" + model.PersonKey(p.ContactName)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
