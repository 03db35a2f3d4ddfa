package model

import (
	"encoding/json"
	"testing"
)

func TestLoadSecrets_Apply(t *testing.T) {
	t.Setenv("LINKUP_API_KEY", "lk-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434/v1")
	t.Setenv("CLAY_JOBS_WEBHOOK", "https://hooks.example/jobs")
	t.Setenv("CLAY_CONTACTS_WEBHOOK", "")

	secrets, err := LoadSecrets()
	if err != nil {
		t.Fatalf("LoadSecrets failed: %v", err)
	}

	cfg := DefaultConfig()
	secrets.Apply(cfg)
	if cfg.Linkup.APIKey != "lk-test" || cfg.LLM.APIKey != "sk-test" {
		t.Errorf("unexpected keys: %q %q", cfg.Linkup.APIKey, cfg.LLM.APIKey)
	}
	if cfg.Notify.JobsWebhook != "https://hooks.example/jobs" || cfg.Notify.ContactsWebhook != "" {
		t.Errorf("unexpected webhooks: %+v", cfg.Notify)
	}

	cfg = DefaultConfig()
	cfg.LLM.Provider = "ollama"
	secrets.Apply(cfg)
	if cfg.LLM.APIKey != "" || cfg.LLM.BaseURL != "http://ollama:11434/v1" {
		t.Errorf("unexpected ollama settings: %+v", cfg.LLM)
	}
}

func TestParseSourceKind(t *testing.T) {
	tests := []struct {
		in      string
		want    SourceKind
		wantErr bool
	}{
		{"linkedin", SourceProfessionalNetwork, false},
		{"Web Search", SourceWebSearch, false},
		{"web_search", SourceWebSearch, false},
		{"carrier pigeon", SourceUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSourceKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSourceKind(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSourceKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPersonRecord_JSON(t *testing.T) {
	data, err := json.Marshal(PersonRecord{
		Name:       "Bob Smith",
		Title:      "Owner",
		Category:   CategoryOwnership,
		SourceKind: SourceProfessionalNetwork,
		Confidence: ConfidenceHigh,
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"name":"Bob Smith","title":"Owner","category":"Owners / Boss","source":"LinkedIn","mentioned_in_job_posting":false,"confidence":"High"}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}
}

func TestResolutionResult_ByCategory(t *testing.T) {
	r := &ResolutionResult{People: []PersonRecord{
		{Name: "A One", Category: CategoryHiring, Confidence: ConfidenceHigh},
		{Name: "B Two", Category: CategoryOwnership},
		{Name: "C Three", Category: CategoryHiring},
	}}

	groups := r.ByCategory()
	if len(groups[CategoryHiring]) != 2 || groups[CategoryHiring][0].Name != "A One" {
		t.Errorf("unexpected hiring group: %+v", groups[CategoryHiring])
	}
	if r.HighConfidence() != 1 {
		t.Errorf("expected 1 high confidence, got %d", r.HighConfidence())
	}
}

func TestJobPosting_HasContact(t *testing.T) {
	if (JobPosting{ContactName: "  "}).HasContact() {
		t.Error("blank contact should not count")
	}
	if !(JobPosting{ContactName: "Jane Doe"}).HasContact() {
		t.Error("expected contact")
	}
}
