// Best-effort parsing of structured model output. Providers frequently wrap
// JSON in markdown fences or prepend prose; parsing failures are recoverable
// by design — the raw text is preserved under a fallback field rather than
// failing the call.
package ai

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// StructuredResult is the outcome of a best-effort structured parse.
type StructuredResult struct {
	// Data holds the parsed JSON object when parsing (and, if a schema was
	// supplied, validation) succeeded.
	Data json.RawMessage `json:"data,omitempty"`
	// RawText carries the unparsed model output when structured parsing
	// failed. Exactly one of Data/RawText is set.
	RawText string `json:"raw_text,omitempty"`
	// SchemaErrors lists validation failures when the payload parsed but
	// did not conform; Data is still populated in that case so callers can
	// decide how strict to be.
	SchemaErrors []string `json:"schema_errors,omitempty"`
}

// Structured reports whether a parsed payload is available.
func (r *StructuredResult) Structured() bool { return len(r.Data) > 0 }

// ParseStructured attempts to extract a JSON object from model output.
// schema may be empty to skip validation. The function never fails: on any
// parse error the raw text is returned under RawText.
func ParseStructured(content, schema string) *StructuredResult {
	cleaned := stripMarkdownFences(content)

	var probe any
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		// Second chance: grab the outermost object literal.
		if inner := outermostObject(cleaned); inner != "" {
			if err2 := json.Unmarshal([]byte(inner), &probe); err2 == nil {
				cleaned = inner
			} else {
				return &StructuredResult{RawText: content}
			}
		} else {
			return &StructuredResult{RawText: content}
		}
	}

	res := &StructuredResult{Data: json.RawMessage(cleaned)}
	if schema == "" {
		return res
	}

	validation, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(cleaned),
	)
	if err != nil {
		res.SchemaErrors = []string{err.Error()}
		return res
	}
	if !validation.Valid() {
		for _, desc := range validation.Errors() {
			res.SchemaErrors = append(res.SchemaErrors, desc.String())
		}
	}
	return res
}

// stripMarkdownFences removes a surrounding ```json ... ``` (or plain ```)
// fence, a habit models keep even when asked for bare JSON.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// outermostObject returns the substring from the first '{' to the matching
// last '}', or "" when no object literal is present.
func outermostObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
