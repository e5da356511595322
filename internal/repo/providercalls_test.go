package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/Jwuthri/resume-roaster/internal/domain"
)

func TestCreateProviderCall_WithTurns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := "user-1"

	call, err := CreateProviderCall(ctx, db, &domain.ProviderCall{
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		Operation:    "extract",
		UserID:       &user,
		InputTokens:  120,
		OutputTokens: 40,
		TotalTokens:  160,
		CostUSD:      "0.000042",
		Status:       domain.CallCompleted,
		DurationMs:   850,
	}, []domain.ProviderCallMessage{
		{Role: "user", Content: "extract this resume", InputTokens: 120},
		{Role: "assistant", Content: `{"name":"Ada"}`, OutputTokens: 40, CostUSD: "0.000042"},
	})
	if err != nil {
		t.Fatalf("CreateProviderCall: %v", err)
	}
	if call.ID == "" || call.CreatedAt.IsZero() {
		t.Fatalf("expected ID and CreatedAt stamped, got %+v", call)
	}

	msgs, err := ListCallMessages(ctx, db, call.ID)
	if err != nil {
		t.Fatalf("ListCallMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Turn != i {
			t.Fatalf("turn %d stored as %d", i, m.Turn)
		}
		if m.CallID != call.ID {
			t.Fatalf("turn %d linked to %q", i, m.CallID)
		}
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("unexpected roles %q, %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestListProviderCalls_PagingPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice, bob := "alice", "bob"

	mk := func(user *string, op string) {
		t.Helper()
		if _, err := CreateProviderCall(ctx, db, &domain.ProviderCall{
			Provider: "anthropic", Model: "claude-3-5-sonnet-20241022",
			Operation: op, UserID: user,
			CostUSD: "0", Status: domain.CallCompleted,
		}, nil); err != nil {
			t.Fatalf("create call: %v", err)
		}
	}
	mk(&alice, "extract")
	mk(&alice, "roast")
	mk(&alice, "cover_letter")
	mk(&bob, "extract")
	mk(nil, "extract")

	total, err := CountProviderCalls(ctx, db, alice)
	if err != nil {
		t.Fatalf("CountProviderCalls: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 calls for alice, got %d", total)
	}

	page, err := ListProviderCalls(ctx, db, alice, 0, 2)
	if err != nil {
		t.Fatalf("ListProviderCalls: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	for _, c := range page {
		if c.UserID == nil || *c.UserID != alice {
			t.Fatalf("leaked call for %v", c.UserID)
		}
	}

	rest, err := ListProviderCalls(ctx, db, alice, 2, 2)
	if err != nil {
		t.Fatalf("ListProviderCalls offset: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected 1 remaining call, got %d", len(rest))
	}
}

func TestFindProviderCall_ScopedToUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := "user-1"

	call, err := CreateProviderCall(ctx, db, &domain.ProviderCall{
		Provider: "openai", Model: "gpt-4o-mini", Operation: "extract",
		UserID: &owner, CostUSD: "0.000042", Status: domain.CallCompleted,
	}, nil)
	if err != nil {
		t.Fatalf("CreateProviderCall: %v", err)
	}

	got, err := FindProviderCall(ctx, db, owner, call.ID)
	if err != nil {
		t.Fatalf("FindProviderCall: %v", err)
	}
	if got.ID != call.ID {
		t.Fatalf("wrong call: %q", got.ID)
	}

	// Another user's id does not reach the row.
	if _, err := FindProviderCall(ctx, db, "user-2", call.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
	if _, err := FindProviderCall(ctx, db, owner, "no-such-call"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}
