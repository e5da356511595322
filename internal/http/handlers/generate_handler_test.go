package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Jwuthri/resume-roaster/internal/ai"
	"github.com/Jwuthri/resume-roaster/internal/domain"
	"github.com/Jwuthri/resume-roaster/internal/repo"
	"github.com/Jwuthri/resume-roaster/internal/services"
)

func genRouter(svc ArtifactService) *gin.Engine {
	h := newStubHandlers(nil, nil, svc, nil)
	r := gin.New()
	r.POST("/generate/roast", h.GenerateRoast)
	r.POST("/generate/cover-letter", h.GenerateCoverLetter)
	r.POST("/generate/optimized-resume", h.GenerateOptimizedResume)
	r.POST("/generate/interview-prep", h.GenerateInterviewPrep)
	return r
}

func TestGenerateRoast(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Bad JSON -> 400
	{
		r := genRouter(stubGenSvc{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate/roast", bytes.NewBufferString("{bad")))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// Missing required hashes -> 400
	{
		r := genRouter(stubGenSvc{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate/roast", bytes.NewBufferString(`{"resume_hash":"a"}`)))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing job_hash -> %d", w.Code)
		}
	}

	// Fresh roast -> 201 with score and split keywords
	{
		score := 67
		var captured services.GenerateInput
		svc := stubGenSvc{generate: func(_ context.Context, in services.GenerateInput) (*services.GenerateResult, error) {
			captured = in
			return &services.GenerateResult{
				Artifact: &domain.GeneratedArtifact{
					ID:              "art-1",
					Kind:            domain.KindRoast,
					ContentHash:     strings.Repeat("a", 64),
					Payload:         `{"score":67}`,
					SchemaVersion:   1,
					Score:           &score,
					MatchedKeywords: "go,sql",
				},
				Usage:   ai.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
				CostUSD: "0.000123",
			}, nil
		}}
		r := genRouter(svc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate/roast", bytes.NewBufferString(
			`{"resume_hash":" rh ","job_hash":"jh","provider":"Anthropic","model":"Sonnet"}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("roast -> %d body=%s", w.Code, w.Body.String())
		}
		if captured.Kind != domain.KindRoast || captured.UserID != "u1" {
			t.Fatalf("unexpected input %+v", captured)
		}
		if captured.ResumeHash != "rh" || captured.Provider != "anthropic" || captured.Model != "sonnet" {
			t.Fatalf("input not normalized: %+v", captured)
		}

		var out ArtifactResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Score == nil || *out.Score != 67 {
			t.Fatalf("score = %v", out.Score)
		}
		if len(out.MatchedKeywords) != 2 || out.MatchedKeywords[0] != "go" {
			t.Fatalf("keywords = %v", out.MatchedKeywords)
		}
		if !out.Success {
			t.Fatalf("success flag missing: %+v", out)
		}
		if out.Metadata.EstimatedCost != "0.000123" || out.Metadata.TokensUsed != 15 {
			t.Fatalf("unexpected accounting %+v", out.Metadata)
		}
		if out.Metadata.InputTokens != 10 || out.Metadata.OutputTokens != 5 {
			t.Fatalf("token split lost: %+v", out.Metadata)
		}
	}

	// Cached artifact -> 200
	{
		svc := stubGenSvc{generate: func(context.Context, services.GenerateInput) (*services.GenerateResult, error) {
			return &services.GenerateResult{
				Artifact: &domain.GeneratedArtifact{Kind: domain.KindRoast, ContentHash: strings.Repeat("b", 64), Payload: `{}`},
				Cached:   true,
				CostUSD:  "0",
			}, nil
		}}
		r := genRouter(svc)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate/roast",
			bytes.NewBufferString(`{"resume_hash":"rh","job_hash":"jh"}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("cached roast -> %d", w.Code)
		}
	}
}

func TestGenerate_KindRouting(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var kinds []string
	svc := stubGenSvc{generate: func(_ context.Context, in services.GenerateInput) (*services.GenerateResult, error) {
		kinds = append(kinds, in.Kind)
		return &services.GenerateResult{
			Artifact: &domain.GeneratedArtifact{Kind: in.Kind, Payload: `{}`},
			CostUSD:  "0",
		}, nil
	}}
	r := genRouter(svc)

	for _, path := range []string{"/generate/roast", "/generate/cover-letter", "/generate/optimized-resume", "/generate/interview-prep"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path,
			bytes.NewBufferString(`{"resume_hash":"rh","job_hash":"jh"}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("%s -> %d", path, w.Code)
		}
	}
	want := []string{domain.KindRoast, domain.KindCoverLetter, domain.KindOptimizedResume, domain.KindInterviewPrep}
	for i, k := range want {
		if kinds[i] != k {
			t.Fatalf("route %d dispatched kind %q, want %q", i, kinds[i], k)
		}
	}
}

func TestGenerate_ErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{services.ErrAuthRequired, http.StatusUnauthorized},
		{services.ErrQuotaExceeded, http.StatusPaymentRequired},
		{services.ErrDocumentNotFound, http.StatusNotFound},
		{services.ErrJobPostingNotFound, http.StatusNotFound},
		{ai.ErrUnknownModel, http.StatusBadRequest},
	}
	for _, tc := range cases {
		svc := stubGenSvc{generate: func(context.Context, services.GenerateInput) (*services.GenerateResult, error) {
			return nil, tc.err
		}}
		r := genRouter(svc)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate/roast",
			bytes.NewBufferString(`{"resume_hash":"rh","job_hash":"jh"}`))
		r.ServeHTTP(w, req)
		if w.Code != tc.status {
			t.Fatalf("%v -> %d, want %d", tc.err, w.Code, tc.status)
		}
	}
}

func TestListArtifacts(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	owner := "u1"
	seed := func(kind, hash string) {
		t.Helper()
		if _, err := repo.CreateArtifact(context.Background(), db, &domain.GeneratedArtifact{
			Kind: kind, ContentHash: hash, Payload: `{}`, OwnerID: &owner,
		}); err != nil {
			t.Fatalf("seed %s: %v", kind, err)
		}
	}
	seed(domain.KindRoast, strings.Repeat("1", 64))
	seed(domain.KindRoast, strings.Repeat("2", 64))
	seed(domain.KindCoverLetter, strings.Repeat("3", 64))

	h := newStubHandlers(&services.ExtractService{DB: db}, nil, nil, nil)
	r := gin.New()
	r.GET("/account/artifacts", h.ListArtifacts)

	// Anonymous -> 401
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/account/artifacts", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous -> %d", w.Code)
	}

	// Unknown kind -> 400
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/account/artifacts?kind=sonnet", nil)
	req.Header.Set("X-User-ID", owner)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad kind -> %d", w.Code)
	}

	// Kind filter applies
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/account/artifacts?kind=roast", nil)
	req.Header.Set("X-User-ID", owner)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d body=%s", w.Code, w.Body.String())
	}
	var out ListArtifactsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Artifacts) != 2 {
		t.Fatalf("expected 2 roasts, got %d", len(out.Artifacts))
	}

	// No filter returns everything the caller owns
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/account/artifacts", nil)
	req.Header.Set("X-User-ID", owner)
	r.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(out.Artifacts) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(out.Artifacts))
	}
}

func TestDeleteArtifact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	owner := "u1"
	a, err := repo.CreateArtifact(context.Background(), db, &domain.GeneratedArtifact{
		Kind: domain.KindRoast, ContentHash: strings.Repeat("a", 64), Payload: `{}`, OwnerID: &owner,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := newStubHandlers(&services.ExtractService{DB: db}, nil, nil, nil)
	r := gin.New()
	r.DELETE("/account/artifacts/:id", h.DeleteArtifact)

	del := func(uid, id string) int {
		t.Helper()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/account/artifacts/"+id, nil)
		if uid != "" {
			req.Header.Set("X-User-ID", uid)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := del("", a.ID); code != http.StatusUnauthorized {
		t.Fatalf("anonymous -> %d", code)
	}
	if code := del("u2", a.ID); code != http.StatusNotFound {
		t.Fatalf("foreign owner -> %d", code)
	}
	if code := del(owner, a.ID); code != http.StatusNoContent {
		t.Fatalf("delete -> %d", code)
	}
	if code := del(owner, a.ID); code != http.StatusNotFound {
		t.Fatalf("second delete -> %d", code)
	}
}
