// Package docs holds the OpenAPI document served by the Swagger UI.
// Regenerate with `swag init -g cmd/server/main.go` after changing
// handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/resumes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["resumes"],
                "summary": "List the caller's resumes",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "304": {"description": "Not Modified"}, "401": {"description": "Unauthorized"}}
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["resumes"],
                "summary": "Upload a resume PDF and extract structured data",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "name": "extraction_method", "in": "formData"},
                    {"type": "string", "name": "provider", "in": "formData"},
                    {"type": "string", "name": "model", "in": "formData"}
                ],
                "responses": {"200": {"description": "Cached"}, "201": {"description": "Created"}, "400": {"description": "Bad Request"}, "402": {"description": "Quota Exceeded"}, "415": {"description": "Unsupported Media Type"}, "502": {"description": "Provider Failed"}}
            }
        },
        "/resumes/{hash}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["resumes"],
                "summary": "Fetch an extracted resume by content hash",
                "parameters": [{"type": "string", "name": "hash", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/resumes/{hash}/summarize": {
            "post": {
                "produces": ["application/json"],
                "tags": ["resumes"],
                "summary": "Summarize an extracted resume",
                "parameters": [{"type": "string", "name": "hash", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/job-postings": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["job-postings"],
                "summary": "Ingest a job description",
                "responses": {"200": {"description": "Cached"}, "201": {"description": "Created"}, "400": {"description": "Bad Request"}, "402": {"description": "Quota Exceeded"}}
            }
        },
        "/job-postings/{hash}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["job-postings"],
                "summary": "Fetch an ingested job posting by content hash",
                "parameters": [{"type": "string", "name": "hash", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/job-postings/{hash}/summarize": {
            "post": {
                "produces": ["application/json"],
                "tags": ["job-postings"],
                "summary": "Summarize an ingested job posting",
                "parameters": [{"type": "string", "name": "hash", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/generate/roast": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Roast a resume against a job posting",
                "responses": {"200": {"description": "Cached"}, "201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "402": {"description": "Quota Exceeded"}, "404": {"description": "Not Found"}, "502": {"description": "Provider Failed"}}
            }
        },
        "/generate/cover-letter": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate a cover letter",
                "responses": {"200": {"description": "Cached"}, "201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "402": {"description": "Quota Exceeded"}, "404": {"description": "Not Found"}, "502": {"description": "Provider Failed"}}
            }
        },
        "/generate/optimized-resume": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate an optimized resume",
                "responses": {"200": {"description": "Cached"}, "201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "402": {"description": "Quota Exceeded"}, "404": {"description": "Not Found"}, "502": {"description": "Provider Failed"}}
            }
        },
        "/generate/interview-prep": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate interview preparation notes",
                "responses": {"200": {"description": "Cached"}, "201": {"description": "Created"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "402": {"description": "Quota Exceeded"}, "404": {"description": "Not Found"}, "502": {"description": "Provider Failed"}}
            }
        },
        "/account/quota": {
            "get": {
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Current quota status for the caller",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/account/usage": {
            "get": {
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Provider-call usage history for the caller",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/account/usage/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "One provider call with its message turns",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/account/artifacts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Recent generated artifacts for the caller",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/account/artifacts/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Delete one generated artifact",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Resume Roaster API",
	Description:      "Content-addressed resume extraction, roasting and artifact generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
