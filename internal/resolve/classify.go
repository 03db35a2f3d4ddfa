package resolve

import (
	"strings"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

type categoryKeywords struct {
	category model.Category
	keywords []string
}

// Checked in order: Hiring before Ownership so "HR Director" is a hiring
// contact, Ownership before Operations so "Operations Director" is a boss.
var categoryOrder = []categoryKeywords{
	{model.CategoryHiring, []string{
		"hiring", "recruiter", "recruiting", "talent", "human resources", "hr ",
	}},
	{model.CategoryOwnership, []string{
		"ceo", "chief", "owner", "founder", "president", "partner",
		"vp", "vice president", "director", "head of",
	}},
	{model.CategoryOperationsFleet, []string{
		"operations", "fleet", "transportation", "logistics", "dispatch",
		"safety", "manager",
	}},
}

// Categorize returns the category for a title, or false when the title is
// not relevant to any persona
func Categorize(title string) (model.Category, bool) {
	lower := strings.ToLower(title)
	for _, c := range categoryOrder {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category, true
			}
		}
	}
	return "", false
}
