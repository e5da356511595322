package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"
)

const fakeJobJSON = `{"title":"Senior Go Engineer","company":"Acme","skills":["Go","SQL"],"requirements":[]}`

func newJobService(t *testing.T, db *gorm.DB, client *fakeClient) *JobPostingService {
	t.Helper()
	return NewJobPostingService(db,
		&fakeFactory{client: client},
		NewLedgerService(db, 3, 100, true),
		&TelemetryRecorder{DB: db},
		2000, 0.2)
}

func TestIngest_EmptyAfterSanitization(t *testing.T) {
	svc := newJobService(t, newTestDB(t), &fakeClient{})

	for _, raw := range []string{"", "   \n\t  ", "<script>alert(1)</script>"} {
		if _, err := svc.Ingest(context.Background(), "", raw, "", ""); !errors.Is(err, ErrEmptyJobText) {
			t.Fatalf("Ingest(%q): expected ErrEmptyJobText, got %v", raw, err)
		}
	}
}

func TestIngest_AnonymousStructuralPath(t *testing.T) {
	db := newTestDB(t)
	client := &fakeClient{content: fakeJobJSON}
	svc := newJobService(t, db, client)

	res, err := svc.Ingest(context.Background(), "", "Senior Go Engineer at Acme. Go and SQL required.", "", "")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Cached {
		t.Fatalf("first ingestion must be a miss")
	}
	if client.invocations != 0 {
		t.Fatalf("anonymous ingestion must not call a provider, got %d", client.invocations)
	}
	if !strings.Contains(res.Posting.Payload, "raw_text") {
		t.Fatalf("expected structural payload, got %s", res.Posting.Payload)
	}
	if res.Posting.Provider != "" || res.Posting.Model != "" {
		t.Fatalf("structural rows carry no provenance, got %+v", res.Posting)
	}
}

func TestIngest_WhitespaceVariantsShareOneRow(t *testing.T) {
	db := newTestDB(t)
	svc := newJobService(t, db, &fakeClient{})

	first, err := svc.Ingest(context.Background(), "", "Senior Go Engineer  at Acme.\n\nGo and SQL required.", "", "")
	if err != nil {
		t.Fatalf("plain ingest: %v", err)
	}
	same, err := svc.Ingest(context.Background(), "", "  Senior Go Engineer at Acme.   Go and SQL required. ", "", "")
	if err != nil {
		t.Fatalf("whitespace-variant ingest: %v", err)
	}
	if !same.Cached || same.Posting.ID != first.Posting.ID {
		t.Fatalf("whitespace variant must dedupe to the first row, got cached=%v", same.Cached)
	}
}

func TestIngest_StripsMarkup(t *testing.T) {
	db := newTestDB(t)
	svc := newJobService(t, db, &fakeClient{})

	res, err := svc.Ingest(context.Background(), "",
		"<b>Senior Go Engineer</b> at Acme &amp; Co.", "", "")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if strings.Contains(res.Posting.Payload, "<b>") {
		t.Fatalf("tags must be stripped, got %s", res.Posting.Payload)
	}
	if !strings.Contains(res.Posting.Payload, "Acme \\u0026 Co.") && !strings.Contains(res.Posting.Payload, "Acme & Co.") {
		t.Fatalf("entities must be decoded, got %s", res.Posting.Payload)
	}
}

func TestIngest_RegisteredAIPathAndCacheHit(t *testing.T) {
	db := newTestDB(t)
	client := &fakeClient{content: fakeJobJSON}
	svc := newJobService(t, db, client)

	text := "Senior Go Engineer at Acme. Go and SQL required."
	first, err := svc.Ingest(context.Background(), "user-1", text, "openai", "nano")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if first.Cached {
		t.Fatalf("first ingestion must be a miss")
	}
	if client.invocations != 1 {
		t.Fatalf("expected 1 provider call, got %d", client.invocations)
	}
	if first.Posting.Payload != fakeJobJSON {
		t.Fatalf("unexpected payload %s", first.Posting.Payload)
	}
	if first.Posting.Provider != "openai" || first.Posting.Model != "gpt-4.1-nano" {
		t.Fatalf("unexpected provenance %+v", first.Posting)
	}

	second, err := svc.Ingest(context.Background(), "user-1", text, "openai", "nano")
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if !second.Cached || second.Posting.ID != first.Posting.ID {
		t.Fatalf("expected cache hit, got cached=%v", second.Cached)
	}
	if client.invocations != 1 {
		t.Fatalf("cache hit must not call the provider, got %d", client.invocations)
	}
}

func TestIngest_UnknownModelFallsBackToStructural(t *testing.T) {
	db := newTestDB(t)
	client := &fakeClient{content: fakeJobJSON}
	svc := newJobService(t, db, client)

	res, err := svc.Ingest(context.Background(), "user-1", "Go role at Acme.", "openai", "gpt-9000")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if client.invocations != 0 {
		t.Fatalf("unknown model must not reach a provider, got %d", client.invocations)
	}
	if !strings.Contains(res.Posting.Payload, "raw_text") {
		t.Fatalf("expected structural payload, got %s", res.Posting.Payload)
	}
}

func TestIngest_QuotaExceeded(t *testing.T) {
	db := newTestDB(t)
	client := &fakeClient{content: fakeJobJSON}
	svc := newJobService(t, db, client)
	svc.Ledger = NewLedgerService(db, 0, 100, true)

	_, err := svc.Ingest(context.Background(), "user-broke", "Go role at Acme.", "openai", "nano")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if client.invocations != 0 {
		t.Fatalf("quota denial must precede the provider call")
	}
}

func TestJobSummarize(t *testing.T) {
	db := newTestDB(t)
	client := &fakeClient{content: fakeJobJSON}
	svc := newJobService(t, db, client)

	if _, _, err := svc.Summarize(context.Background(), "", "h", "openai", "nano"); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if _, _, err := svc.Summarize(context.Background(), "user-1", strings.Repeat("0", 64), "openai", "nano"); !errors.Is(err, ErrJobPostingNotFound) {
		t.Fatalf("expected ErrJobPostingNotFound, got %v", err)
	}

	res, err := svc.Ingest(context.Background(), "user-1", "Go role at Acme, strong SQL.", "openai", "nano")
	if err != nil {
		t.Fatalf("seed ingest: %v", err)
	}

	client.content = "Remote Go role, SQL is a must."
	sum, cached, err := svc.Summarize(context.Background(), "user-1", res.Posting.ContentHash, "openai", "nano")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if cached || sum.Summary != "Remote Go role, SQL is a must." {
		t.Fatalf("unexpected summary cached=%v %q", cached, sum.Summary)
	}

	again, cached, err := svc.Summarize(context.Background(), "user-1", res.Posting.ContentHash, "openai", "nano")
	if err != nil {
		t.Fatalf("second Summarize: %v", err)
	}
	if !cached || again.ID != sum.ID {
		t.Fatalf("expected cached summary")
	}
}
