package handlers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NormalizedPayload is what the untyped workflow callback boils down
// to: one displayable message and, when the payload carried structured
// leads, the leads themselves.
type NormalizedPayload struct {
	Message string
	Leads   interface{}
}

// NormalizeLeadsPayload reduces the external workflow's `leads` field -
// which arrives as a JSON string, a plain-text string, an array, or an
// object in a handful of known shapes - to a display message plus
// optional structured leads. Variants are tried in a fixed priority
// order; anything unrecognized falls back to verbatim text or a stock
// message, never to guessed structure.
func NormalizeLeadsPayload(raw interface{}) NormalizedPayload {
	switch data := raw.(type) {
	case string:
		return normalizeString(data)
	case []interface{}:
		return NormalizedPayload{
			Message: fmt.Sprintf("Analysis complete! Found %d potential leads from the video comments.", len(data)),
			Leads:   data,
		}
	case map[string]interface{}:
		return normalizeObject(data)
	default:
		return NormalizedPayload{Message: "Video analysis complete."}
	}
}

// normalizeString handles both Make.com form-encoded payloads (JSON
// serialized into a string field) and plain markdown text.
func normalizeString(data string) NormalizedPayload {
	trimmed := strings.TrimSpace(data)

	if strings.HasPrefix(trimmed, "[") {
		var arr []interface{}
		if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
			return NormalizedPayload{
				Message: fmt.Sprintf("Analysis complete! Found %d potential leads from the video comments.", len(arr)),
				Leads:   arr,
			}
		}
	}
	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			return normalizeObject(obj)
		}
	}

	// Plain text (typically a markdown summary)
	return NormalizedPayload{Message: data}
}

func normalizeObject(data map[string]interface{}) NormalizedPayload {
	// OpenAI-style completion envelope
	if choices, ok := data["choices"].([]interface{}); ok && len(choices) > 0 {
		if content := extractChoiceContent(choices[0]); content != "" {
			result := NormalizedPayload{Message: content}
			// Content sometimes carries the lead array serialized again
			var contentLeads []interface{}
			if err := json.Unmarshal([]byte(content), &contentLeads); err == nil {
				result.Leads = contentLeads
			}
			return result
		}
	}

	if content, ok := data["content"].(string); ok && content != "" {
		return NormalizedPayload{Message: content}
	}
	if summary, ok := data["summary"].(string); ok && summary != "" {
		return NormalizedPayload{Message: summary}
	}
	if results, ok := data["results"].(string); ok && results != "" {
		return NormalizedPayload{Message: results}
	}

	// Generic object: report the field names, pass the payload through
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return NormalizedPayload{
		Message: fmt.Sprintf("Analysis complete! Received data with fields: %s", strings.Join(keys, ", ")),
		Leads:   data,
	}
}

func extractChoiceContent(choice interface{}) string {
	choiceMap, ok := choice.(map[string]interface{})
	if !ok {
		return ""
	}
	message, ok := choiceMap["message"].(map[string]interface{})
	if !ok {
		return ""
	}
	content, _ := message["content"].(string)
	return content
}
