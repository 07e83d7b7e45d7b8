package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/raphaelgruber/flirtassist/internal/client"
)

// ErrNoSuggestions is returned when a model answer holds no usable reply.
var ErrNoSuggestions = errors.New("model returned no suggestions")

var listItemRegex = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+(.+)$`)

type modelAnswer struct {
	OCRText     string   `json:"ocrText"`
	Title       string   `json:"title"`
	Suggestions []string `json:"suggestions"`
}

// parseAnswer extracts the JSON object from a model answer. Answers wrapped
// in code fences or surrounded by prose are accepted; when no JSON is found
// a numbered or bulleted list is used as the suggestions.
func parseAnswer(raw string) (*client.Response, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	var ans modelAnswer
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &ans); err != nil {
			ans = modelAnswer{}
		}
	}
	if len(ans.Suggestions) == 0 {
		ans.Suggestions = listItems(text)
	}

	out := &client.Response{
		OCRText: strings.TrimSpace(ans.OCRText),
		Title:   strings.TrimSpace(ans.Title),
	}
	for _, s := range ans.Suggestions {
		s = strings.Trim(strings.TrimSpace(s), `"`)
		if s == "" {
			continue
		}
		out.Suggestions = append(out.Suggestions, s)
		if len(out.Suggestions) == SuggestionCount {
			break
		}
	}
	if len(out.Suggestions) == 0 {
		return nil, ErrNoSuggestions
	}
	return out, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func listItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if m := listItemRegex.FindStringSubmatch(line); m != nil {
			items = append(items, m[1])
		}
	}
	return items
}
