// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for provider call
// telemetry and its per-turn message rows.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/domain"
)

// CreateProviderCall inserts one telemetry row for an external AI
// invocation together with its per-turn messages, in a single transaction.
func CreateProviderCall(ctx context.Context, db *gorm.DB, call *domain.ProviderCall, msgs []domain.ProviderCallMessage) (*domain.ProviderCall, error) {
	call.ID = uuid.NewString()
	call.CreatedAt = time.Now().UTC()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(call).Error; err != nil {
			return err
		}
		for i := range msgs {
			msgs[i].ID = uuid.NewString()
			msgs[i].CallID = call.ID
			msgs[i].Turn = i
			msgs[i].CreatedAt = call.CreatedAt
			if err := tx.Create(&msgs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return call, nil
}

// ListProviderCalls returns a page of the user's provider calls ordered by
// creation time descending.
func ListProviderCalls(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.ProviderCall, error) {
	var out []domain.ProviderCall
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountProviderCalls returns the total number of provider calls for userID.
func CountProviderCalls(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ProviderCall{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// FindProviderCall returns one of userID's calls by id, or ErrNotFound.
// Scoping by user keeps callers from reading someone else's prompts.
func FindProviderCall(ctx context.Context, db *gorm.DB, userID, callID string) (*domain.ProviderCall, error) {
	var call domain.ProviderCall
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", callID, userID).
		First(&call).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

// ListCallMessages returns the per-turn rows of one call in turn order.
func ListCallMessages(ctx context.Context, db *gorm.DB, callID string) ([]domain.ProviderCallMessage, error) {
	var out []domain.ProviderCallMessage
	err := db.WithContext(ctx).
		Where("call_id = ?", callID).
		Order("turn asc").
		Find(&out).Error
	return out, err
}
