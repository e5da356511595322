package ai

import (
	"encoding/json"
	"strings"
	"testing"
)

const scoreSchema = `{
	"type": "object",
	"required": ["score"],
	"properties": {
		"score": {"type": "integer", "minimum": 0, "maximum": 100}
	}
}`

func TestParseStructured_PlainJSON(t *testing.T) {
	res := ParseStructured(`{"score": 42}`, scoreSchema)
	if !res.Structured() {
		t.Fatalf("expected structured result, got raw %q", res.RawText)
	}
	if len(res.SchemaErrors) != 0 {
		t.Fatalf("unexpected schema errors: %v", res.SchemaErrors)
	}
	var body struct {
		Score int `json:"score"`
	}
	if err := json.Unmarshal(res.Data, &body); err != nil || body.Score != 42 {
		t.Fatalf("bad parsed data: %s (err=%v)", res.Data, err)
	}
}

func TestParseStructured_MarkdownFence(t *testing.T) {
	content := "```json\n{\"score\": 10}\n```"
	res := ParseStructured(content, scoreSchema)
	if !res.Structured() {
		t.Fatalf("fenced JSON not parsed: raw=%q", res.RawText)
	}
}

func TestParseStructured_ProseWrappedObject(t *testing.T) {
	content := "Here is the result you asked for:\n{\"score\": 77}\nHope that helps!"
	res := ParseStructured(content, scoreSchema)
	if !res.Structured() {
		t.Fatalf("embedded object not recovered: raw=%q", res.RawText)
	}
}

func TestParseStructured_NotJSON_FallsBackToRawText(t *testing.T) {
	content := "I could not produce JSON, sorry."
	res := ParseStructured(content, scoreSchema)
	if res.Structured() {
		t.Fatalf("expected raw fallback, got data %s", res.Data)
	}
	if res.RawText != content {
		t.Fatalf("raw text must be preserved verbatim, got %q", res.RawText)
	}
}

func TestParseStructured_SchemaViolation_KeepsData(t *testing.T) {
	res := ParseStructured(`{"score": 500}`, scoreSchema)
	if !res.Structured() {
		t.Fatalf("data must survive a schema violation")
	}
	if len(res.SchemaErrors) == 0 {
		t.Fatalf("expected schema errors for out-of-range score")
	}
}

func TestParseStructured_EmptySchemaSkipsValidation(t *testing.T) {
	res := ParseStructured(`{"anything": true}`, "")
	if !res.Structured() || len(res.SchemaErrors) != 0 {
		t.Fatalf("empty schema must skip validation: %+v", res)
	}
}

func TestStripMarkdownFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{}\n```": "{}",
		"```\n{}\n```":     "{}",
		"{}":               "{}",
		"  {} ":            "{}",
	}
	for in, want := range cases {
		if got := stripMarkdownFences(in); got != want {
			t.Fatalf("stripMarkdownFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOutermostObject(t *testing.T) {
	if got := outermostObject("no braces here"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := outermostObject(`x {"a":{"b":1}} y`); got != `{"a":{"b":1}}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
	if got := outermostObject("}{"); got != "" && !strings.Contains(got, "{") {
		t.Fatalf("malformed input mishandled: %q", got)
	}
}
