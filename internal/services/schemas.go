// Versioned JSON schemas for structured payloads. Each artifact kind has an
// explicit schema so payload shape changes are migratable: new shapes get a
// new version constant and a new schema rather than silently shape-shifting
// rows in place.
package services

// Payload schema versions recorded on persisted rows.
const (
	resumeSchemaVersion    = 1
	jobSchemaVersion       = 1
	roastSchemaVersion     = 1
	coverSchemaVersion     = 1
	optimizeSchemaVersion  = 1
	interviewSchemaVersion = 1
)

// resumeSchemaV1 validates extracted resume payloads.
const resumeSchemaV1 = `{
  "type": "object",
  "properties": {
    "name":           {"type": ["string", "null"]},
    "email":          {"type": ["string", "null"]},
    "phone":          {"type": ["string", "null"]},
    "location":       {"type": ["string", "null"]},
    "summary":        {"type": ["string", "null"]},
    "skills":         {"type": ["array", "null"], "items": {"type": "string"}},
    "experience":     {"type": ["array", "null"]},
    "education":      {"type": ["array", "null"]},
    "certifications": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

// jobSchemaV1 validates extracted job posting payloads.
const jobSchemaV1 = `{
  "type": "object",
  "properties": {
    "title":            {"type": ["string", "null"]},
    "company":          {"type": ["string", "null"]},
    "location":         {"type": ["string", "null"]},
    "seniority":        {"type": ["string", "null"]},
    "required_skills":  {"type": ["array", "null"], "items": {"type": "string"}},
    "nice_to_have":     {"type": ["array", "null"], "items": {"type": "string"}},
    "responsibilities": {"type": ["array", "null"], "items": {"type": "string"}},
    "salary_range":     {"type": ["string", "null"]}
  }
}`

// roastSchemaV1 validates roast payloads; score and roast text are the
// contract the UI depends on.
const roastSchemaV1 = `{
  "type": "object",
  "required": ["score", "roast"],
  "properties": {
    "score":            {"type": "integer", "minimum": 0, "maximum": 100},
    "matched_keywords": {"type": ["array", "null"], "items": {"type": "string"}},
    "missing_keywords": {"type": ["array", "null"], "items": {"type": "string"}},
    "roast":            {"type": "string"},
    "improvements":     {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

// coverSchemaV1 validates cover letter payloads.
const coverSchemaV1 = `{
  "type": "object",
  "required": ["cover_letter"],
  "properties": {
    "cover_letter": {"type": "string"},
    "tone":         {"type": ["string", "null"]}
  }
}`

// interviewSchemaV1 validates interview prep payloads.
const interviewSchemaV1 = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "difficulty":       {"type": ["string", "null"]},
    "questions":        {"type": "array"},
    "topics_to_review": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`
