package model

import "strings"

// JobPosting is the persisted job-posting context supplied by the caller.
// The resolver only reads it.
type JobPosting struct {
	JobURL         string `json:"job_url,omitempty" yaml:"job_url,omitempty"`
	JobTitle       string `json:"job_title,omitempty" yaml:"job_title,omitempty"`
	CompanyName    string `json:"company_name" yaml:"company_name"`
	CompanyDomain  string `json:"company_domain,omitempty" yaml:"company_domain,omitempty"`
	JobDescription string `json:"job_description,omitempty" yaml:"job_description,omitempty"`
	ContactName    string `json:"contact_name,omitempty" yaml:"contact_name,omitempty"`
	ContactEmail   string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
}

// HasContact reports whether the posting names a contact person
func (j JobPosting) HasContact() bool {
	return strings.TrimSpace(j.ContactName) != ""
}
