package itinerary

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const fence = "```"

var (
	// fencedBlock finds a fenced block anywhere in conversational text.
	fencedBlock = regexp.MustCompile("(?s)```[A-Za-z]*[ \\t]*\\r?\\n(.*?)```")
	languageTag = regexp.MustCompile(`^[A-Za-z]+`)
)

// Extract turns a raw model reply into an Itinerary. Parsing is two-stage: the body
// must first be a JSON object (otherwise *ExtractionError), then it is decoded into
// the typed model (a mismatch there is *SchemaDriftError). No structural checks are
// made here; see Inspect.
func Extract(raw string) (*Itinerary, error) {
	body := stripFences(raw)

	var probe any
	if err := json.Unmarshal([]byte(body), &probe); err != nil {
		return nil, &ExtractionError{Raw: raw, Err: err}
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, &ExtractionError{Raw: raw, Err: errNotObject}
	}

	var it Itinerary
	if err := json.Unmarshal([]byte(body), &it); err != nil {
		return nil, &SchemaDriftError{Err: fmt.Errorf("decode itinerary: %w", err)}
	}
	return &it, nil
}

func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, fence) {
		text = strings.TrimPrefix(text, fence)
		text = languageTag.ReplaceAllString(text, "")
		if i := strings.LastIndex(text, fence); i >= 0 {
			text = text[:i]
		}
		return strings.TrimSpace(text)
	}
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
