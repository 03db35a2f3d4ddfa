package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// JobPayload is one row of the job offers table
type JobPayload struct {
	JobURL           string `json:"Job URL"`
	JobTitle         string `json:"Job Title"`
	CompanyName      string `json:"Company Name"`
	CompanyWebsite   string `json:"Company Website"`
	ContactInPosting string `json:"Contact in Posting"`
	DecisionMakers   int    `json:"Decision Makers Found"`
	ValidContacts    int    `json:"Valid Contacts"`
}

// ContactPayload is one row of the contacts table
type ContactPayload struct {
	CompanyName    string `json:"Company Name"`
	CompanyWebsite string `json:"Company Website"`
	Name           string `json:"Decision Maker Name"`
	Title          string `json:"Decision Maker Title"`
	Category       string `json:"Category"`
	ProfileURL     string `json:"LinkedIn"`
	Status         string `json:"Status"`
	Source         string `json:"Source"`
	Mentioned      string `json:"Mentioned in Job Posting"`
	Confidence     string `json:"Confidence"`
	JobURL         string `json:"Job URL"`
}

// Notifier sends each finished resolution to the jobs and contacts
// webhooks. Either webhook may be absent.
type Notifier struct {
	jobs     *Webhook
	contacts *Webhook
}

// NewNotifier creates a notifier from configuration. It returns nil when
// notifications are disabled or no webhook is configured.
func NewNotifier(cfg model.NotifyConfig, logger *zap.Logger) *Notifier {
	if !cfg.Enabled || (cfg.JobsWebhook == "" && cfg.ContactsWebhook == "") {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := DefaultOptions()
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	opts.Retries = cfg.Retries

	n := &Notifier{}
	if cfg.JobsWebhook != "" {
		n.jobs = NewWebhook(cfg.JobsWebhook, opts, logger.With(zap.String("webhook", "jobs")))
	}
	if cfg.ContactsWebhook != "" {
		n.contacts = NewWebhook(cfg.ContactsWebhook, opts, logger.With(zap.String("webhook", "contacts")))
	}
	return n
}

// Publish queues one job row and one contact row per person
func (n *Notifier) Publish(ctx context.Context, posting model.JobPosting, result *model.ResolutionResult) {
	if n == nil || result == nil {
		return
	}

	valid := 0
	for _, p := range result.People {
		if p.ProfileURL != "" {
			valid++
		}
	}

	if n.jobs != nil {
		n.jobs.Publish(ctx, JobPayload{
			JobURL:           posting.JobURL,
			JobTitle:         posting.JobTitle,
			CompanyName:      result.Company,
			CompanyWebsite:   result.Domain,
			ContactInPosting: posting.ContactName,
			DecisionMakers:   len(result.People),
			ValidContacts:    valid,
		})
	}

	if n.contacts != nil {
		for _, p := range result.People {
			n.contacts.Publish(ctx, contactPayload(posting, result, p))
		}
	}
}

func contactPayload(posting model.JobPosting, result *model.ResolutionResult, p model.PersonRecord) ContactPayload {
	mentioned := "No"
	if p.MentionedInPosting {
		mentioned = "Yes"
	}
	return ContactPayload{
		CompanyName:    result.Company,
		CompanyWebsite: result.Domain,
		Name:           p.Name,
		Title:          p.Title,
		Category:       string(p.Category),
		ProfileURL:     p.ProfileURL,
		Status:         p.Status(),
		Source:         p.SourceKind.String(),
		Mentioned:      mentioned,
		Confidence:     p.Confidence.String(),
		JobURL:         posting.JobURL,
	}
}

// Wait blocks until every queued delivery has finished
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	if n.jobs != nil {
		n.jobs.Wait()
	}
	if n.contacts != nil {
		n.contacts.Wait()
	}
}

// Summary describes delivery counts for logging
func (n *Notifier) Summary() string {
	if n == nil {
		return "disabled"
	}
	var jobs, contacts, failed int
	if n.jobs != nil {
		d, f := n.jobs.Stats()
		jobs, failed = d, failed+f
	}
	if n.contacts != nil {
		d, f := n.contacts.Stats()
		contacts, failed = d, failed+f
	}
	return fmt.Sprintf("%d jobs, %d contacts, %d failed", jobs, contacts, failed)
}
