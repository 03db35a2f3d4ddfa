package model

// Document is one ranked result returned by a document search
type Document struct {
	URL     string `json:"url"`               // Result URL
	Name    string `json:"name"`              // Title snippet
	Content string `json:"content,omitempty"` // Content snippet
}

// Text returns the combined title and content snippet
func (d Document) Text() string {
	if d.Content == "" {
		return d.Name
	}
	return d.Name + " " + d.Content
}

// Depth trades recall for latency and cost on a search
type Depth string

const (
	DepthStandard Depth = "standard" // Cheap discovery
	DepthDeep     Depth = "deep"     // Used for structured extraction
)

// PersonHit is one {name, title} pair returned by structured extraction
type PersonHit struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// PeopleHits is the result shape for person discovery
type PeopleHits struct {
	People []PersonHit `json:"people"`
}

// TitleHit is the result shape for a single-title lookup
type TitleHit struct {
	Title string `json:"title"`
}
