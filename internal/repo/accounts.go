// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Account rows
// and their usage counters.
//
// Counter updates run as single-row UPDATE statements with guards in the
// WHERE clause so concurrent debits never drive a balance negative.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/domain"
)

// ErrNoCredits indicates a bonus-credit debit found no credit to consume.
var ErrNoCredits = errors.New("no bonus credits")

// GetAccount fetches an account by id, or ErrNotFound.
func GetAccount(ctx context.Context, db *gorm.DB, id string) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetOrCreateAccount fetches the account, creating a free-tier row on first
// sight of the user.
func GetOrCreateAccount(ctx context.Context, db *gorm.DB, id string) (*domain.Account, error) {
	a, err := GetAccount(ctx, db, id)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	a = &domain.Account{
		ID:        id,
		Tier:      domain.TierFree,
		LastReset: now,
		CreatedAt: now,
	}
	if cerr := db.WithContext(ctx).Create(a).Error; cerr != nil {
		if isUniqueViolation(cerr) {
			return GetAccount(ctx, db, id)
		}
		return nil, cerr
	}
	return a, nil
}

// ResetMonthlyUsage zeroes the monthly counter and stamps last_reset,
// guarded so a concurrent rollover does not reset twice.
func ResetMonthlyUsage(ctx context.Context, db *gorm.DB, id string, now time.Time, prevReset time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ? AND last_reset = ?", id, prevReset).
		Updates(map[string]any{
			"monthly_used": 0,
			"last_reset":   now,
		}).Error
}

// IncrementUsage bumps the monthly and lifetime counters by one.
func IncrementUsage(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"monthly_used":  gorm.Expr("monthly_used + 1"),
			"lifetime_used": gorm.Expr("lifetime_used + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ConsumeBonusCredit decrements the bonus balance by one. Returns
// ErrNoCredits when the balance is already zero (the WHERE guard keeps the
// balance non-negative under concurrency).
func ConsumeBonusCredit(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ? AND bonus_credits > 0", id).
		Update("bonus_credits", gorm.Expr("bonus_credits - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoCredits
	}
	return nil
}

// AddBonusCredits tops up the bonus balance (purchase flow).
func AddBonusCredits(ctx context.Context, db *gorm.DB, id string, n int) error {
	res := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("id = ?", id).
		Update("bonus_credits", gorm.Expr("bonus_credits + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
