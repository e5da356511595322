// Prompt construction for every AI operation. Prompt text is versioned:
// the version string participates in the content fingerprint, so editing a
// prompt invalidates exactly the cache entries it affects and nothing else.
package services

import "fmt"

// Prompt versions, bumped whenever the corresponding template changes in a
// way that alters normalized output.
const (
	promptVersionExtract   = "extract-v1"
	promptVersionJob       = "job-v1"
	promptVersionSummarize = "summarize-v1"
	promptVersionRoast     = "roast-v1"
	promptVersionCover     = "cover-v1"
	promptVersionOptimize  = "optimize-v1"
	promptVersionInterview = "interview-v1"
)

const extractSystemPrompt = `You are a resume parser. Respond with a single JSON object and nothing else.`

// extractionPrompt asks for the structured resume schema from plain text.
func extractionPrompt(resumeText string) string {
	return fmt.Sprintf(`Extract the following resume into JSON with keys:
name, email, phone, location, summary, skills (array of strings),
experience (array of {company, title, start, end, highlights}),
education (array of {school, degree, year}), certifications (array of strings).
Use null for missing fields. Resume text:

%s`, resumeText)
}

// visionExtractionPrompt is the image-input variant; the pages are attached
// to the same request.
func visionExtractionPrompt() string {
	return `Extract the resume shown in the attached page images into JSON with keys:
name, email, phone, location, summary, skills (array of strings),
experience (array of {company, title, start, end, highlights}),
education (array of {school, degree, year}), certifications (array of strings).
Use null for fields you cannot read.`
}

const jobSystemPrompt = `You are a job description parser. Respond with a single JSON object and nothing else.`

func jobExtractionPrompt(jobText string) string {
	return fmt.Sprintf(`Extract this job description into JSON with keys:
title, company, location, seniority, required_skills (array of strings),
nice_to_have (array of strings), responsibilities (array of strings),
salary_range. Use null for missing fields. Job description:

%s`, jobText)
}

func summarizePrompt(payload string) string {
	return fmt.Sprintf(`Condense the following structured document into a plain-text
summary of at most 200 words, keeping every skill and dated role. Respond
with the summary only, no preamble:

%s`, payload)
}

const roastSystemPrompt = `You are a brutally honest but constructive resume reviewer.`

func roastPrompt(resume, job string) string {
	return fmt.Sprintf(`Roast this resume against the job description. Respond with JSON:
{"score": integer 0-100, "matched_keywords": [strings], "missing_keywords": [strings],
"roast": string, "improvements": [strings]}.

Resume:
%s

Job description:
%s`, resume, job)
}

func coverLetterPrompt(resume, job, tone string) string {
	if tone == "" {
		tone = "professional"
	}
	return fmt.Sprintf(`Write a cover letter in a %s tone for this candidate and role.
Respond with JSON: {"cover_letter": string, "tone": %q}.

Resume:
%s

Job description:
%s`, tone, tone, resume, job)
}

func optimizedResumePrompt(resume, job, templateID string) string {
	return fmt.Sprintf(`Rewrite this resume to target the job description, template %q.
Keep every fact truthful; reorder and rephrase only. Respond with JSON using
the same schema as the input resume plus "change_log" (array of strings).

Resume:
%s

Job description:
%s`, templateID, resume, job)
}

func interviewPrepPrompt(resume, job, difficulty string) string {
	if difficulty == "" {
		difficulty = "medium"
	}
	return fmt.Sprintf(`Produce interview preparation at %q difficulty for this candidate
and role. Respond with JSON: {"difficulty": %q, "questions": [{"question": string,
"why_asked": string, "suggested_answer": string}], "topics_to_review": [strings]}.

Resume:
%s

Job description:
%s`, difficulty, difficulty, resume, job)
}
