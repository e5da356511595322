package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Jwuthri/resume-roaster/internal/domain"
)

func TestCreateJobPosting_Dedup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	hash := strings.Repeat("a", 64)
	first, err := CreateJobPosting(ctx, db, &domain.ExtractedJobPosting{
		ContentHash:   hash,
		Payload:       `{"title":"Senior Go Engineer"}`,
		SchemaVersion: 1,
		Provider:      "openai",
		Model:         "gpt-4.1-nano",
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("expected ID and CreatedAt stamped, got %+v", first)
	}

	_, err = CreateJobPosting(ctx, db, &domain.ExtractedJobPosting{
		ContentHash: hash, Payload: `{"title":"loser"}`,
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	got, err := FindJobPostingByHash(ctx, db, hash)
	if err != nil {
		t.Fatalf("FindJobPostingByHash: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected winner %s, got %s", first.ID, got.ID)
	}
}

func TestFindJobPostingByHash_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := FindJobPostingByHash(context.Background(), db, strings.Repeat("0", 64))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummarizedJobPosting_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	hash := strings.Repeat("b", 64)
	if _, err := CreateSummarizedJobPosting(ctx, db, &domain.SummarizedJobPosting{
		ContentHash: hash, SourceID: "src-1", Summary: "remote Go role, strong SQL",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := FindSummarizedJobPostingByHash(ctx, db, hash)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Summary != "remote Go role, strong SQL" {
		t.Fatalf("unexpected summary %q", got.Summary)
	}

	_, err = CreateSummarizedJobPosting(ctx, db, &domain.SummarizedJobPosting{
		ContentHash: hash, SourceID: "src-1", Summary: "duplicate",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}
