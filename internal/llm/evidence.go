package llm

import (
	"encoding/json"
	"strings"

	"github.com/thomashgnt/driverjobpost/internal/model"
)

// groundNames removes list items whose "name" does not appear in any
// document. It returns the filtered answer and the names it dropped.
func groundNames(raw []byte, docs []model.Document) ([]byte, []string, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, err
	}

	var corpus strings.Builder
	for _, doc := range docs {
		corpus.WriteString(strings.ToLower(doc.Name))
		corpus.WriteByte('\n')
		corpus.WriteString(strings.ToLower(doc.Content))
		corpus.WriteByte('\n')
	}
	text := corpus.String()

	var dropped []string
	for key, value := range obj {
		items, ok := value.([]any)
		if !ok {
			continue
		}
		kept := make([]any, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				kept = append(kept, item)
				continue
			}
			name, _ := entry["name"].(string)
			name = strings.TrimSpace(name)
			if name != "" && !strings.Contains(text, strings.ToLower(name)) {
				dropped = append(dropped, name)
				continue
			}
			kept = append(kept, item)
		}
		obj[key] = kept
	}

	out, err := json.Marshal(obj)
	if err != nil {
		return nil, nil, err
	}
	return out, dropped, nil
}
