// Package services – LedgerService
//
// This file implements the usage/credit ledger: per-tier monthly quotas,
// the calendar rollover, and consumable bonus credits. The precedence
// between tier quota and bonus credits is a policy parameter
// (BonusAfterTier), applied here at quota-check time and echoed back to
// the caller so RecordUsage debits the right balance.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Jwuthri/resume-roaster/internal/domain"
	"github.com/Jwuthri/resume-roaster/internal/repo"
)

// Unlimited is the sentinel tier limit meaning "no cap".
const Unlimited = -1

// QuotaStatus is the answer to a quota check.
type QuotaStatus struct {
	// Allowed is true when the caller may perform one more chargeable op.
	Allowed bool `json:"allowed"`
	// Used / Limit describe the monthly tier quota. Limit is Unlimited
	// (-1) for the premium tier. Remaining is 0 when exhausted or the
	// limit is unlimited.
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
	// BonusCredits is the non-expiring balance.
	BonusCredits int `json:"bonus_credits"`
	// UseBonus tells RecordUsage to consume a bonus credit for this
	// operation (tier quota exhausted, policy permits).
	UseBonus bool `json:"-"`
	// Tier echoes the account tier.
	Tier string `json:"tier"`
}

// LedgerService tracks usage counters and enforces quotas.
type LedgerService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// FreeLimit and PlusLimit are the monthly allowances for the free and
	// plus tiers; premium is always unlimited.
	FreeLimit int
	PlusLimit int

	// BonusAfterTier controls credit precedence: when true (default
	// policy), bonus credits are consumed only once the tier quota is
	// exhausted.
	BonusAfterTier bool

	// Now is injectable for rollover tests; defaults to time.Now.
	Now func() time.Time
}

// NewLedgerService constructs a LedgerService with the given tier limits.
func NewLedgerService(db *gorm.DB, freeLimit, plusLimit int, bonusAfterTier bool) *LedgerService {
	return &LedgerService{
		DB:             db,
		FreeLimit:      freeLimit,
		PlusLimit:      plusLimit,
		BonusAfterTier: bonusAfterTier,
		Now:            time.Now,
	}
}

// limitFor maps an account tier to its monthly allowance.
func (s *LedgerService) limitFor(tier string) int {
	switch tier {
	case domain.TierPremium:
		return Unlimited
	case domain.TierPlus:
		return s.PlusLimit
	default:
		return s.FreeLimit
	}
}

// CheckQuota evaluates whether accountID may perform one more chargeable
// operation, applying the monthly rollover first. The account is created
// on first sight.
func (s *LedgerService) CheckQuota(ctx context.Context, accountID string) (*QuotaStatus, error) {
	tr := otel.Tracer("services/LedgerService")
	ctx, span := tr.Start(ctx, "CheckQuota",
		trace.WithAttributes(attribute.String("account.id", accountID)),
	)
	defer span.End()

	acct, err := repo.GetOrCreateAccount(ctx, s.DB, accountID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if monthsBetween(acct.LastReset, now) >= 1 {
		if err := repo.ResetMonthlyUsage(ctx, s.DB, acct.ID, now, acct.LastReset); err != nil {
			return nil, err
		}
		// Re-read: a concurrent rollover may have won; either way the
		// counter is now current.
		if acct, err = repo.GetAccount(ctx, s.DB, acct.ID); err != nil {
			return nil, err
		}
	}

	limit := s.limitFor(acct.Tier)
	st := &QuotaStatus{
		Used:         acct.MonthlyUsed,
		Limit:        limit,
		BonusCredits: acct.BonusCredits,
		Tier:         acct.Tier,
	}

	switch {
	case limit == Unlimited:
		st.Allowed = true
	case acct.MonthlyUsed < limit:
		st.Allowed = true
		st.Remaining = limit - acct.MonthlyUsed
	case acct.BonusCredits > 0 && s.BonusAfterTier:
		st.Allowed = true
		st.UseBonus = true
	}
	return st, nil
}

// RecordUsage debits one chargeable operation: monthly and lifetime
// counters always increment, and a bonus credit is consumed when the
// preceding CheckQuota said so. Idempotency is the caller's
// responsibility — the content-hash cache guarantees a given logical
// operation reaches the ledger at most once.
func (s *LedgerService) RecordUsage(ctx context.Context, accountID string, useBonus bool) error {
	tr := otel.Tracer("services/LedgerService")
	ctx, span := tr.Start(ctx, "RecordUsage",
		trace.WithAttributes(
			attribute.String("account.id", accountID),
			attribute.Bool("use_bonus", useBonus),
		),
	)
	defer span.End()

	if useBonus {
		if err := repo.ConsumeBonusCredit(ctx, s.DB, accountID); err != nil && err != repo.ErrNoCredits {
			return err
		}
	}
	return repo.IncrementUsage(ctx, s.DB, accountID)
}

// now applies the injectable clock.
func (s *LedgerService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// monthsBetween returns how many calendar months have advanced from a to b
// (0 when both fall in the same month, negative when b precedes a).
func monthsBetween(a, b time.Time) int {
	a, b = a.UTC(), b.UTC()
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
