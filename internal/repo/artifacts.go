// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for generated
// artifacts (roasts, cover letters, optimized resumes, interview preps).
//
// Artifacts are content-addressed per kind: the (kind, content_hash) pair
// is unique, and a create against an existing pair returns ErrDuplicate so
// the caller can re-read the row that won the race.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/domain"
)

// FindArtifactByHash returns the artifact of the given kind keyed by
// contentHash, or ErrNotFound.
func FindArtifactByHash(ctx context.Context, db *gorm.DB, kind, contentHash string) (*domain.GeneratedArtifact, error) {
	var a domain.GeneratedArtifact
	err := db.WithContext(ctx).
		Where("kind = ? AND content_hash = ?", kind, contentHash).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateArtifact inserts a new artifact row, returning ErrDuplicate when
// the (kind, content_hash) pair already exists.
func CreateArtifact(ctx context.Context, db *gorm.DB, a *domain.GeneratedArtifact) (*domain.GeneratedArtifact, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return a, nil
}

// DeleteArtifactByID removes one of ownerID's artifact rows. Rows owned by
// someone else read as ErrNotFound.
func DeleteArtifactByID(ctx context.Context, db *gorm.DB, ownerID, id string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.GeneratedArtifact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRecentArtifacts returns up to limit of the user's artifacts of the
// given kind, ordered by creation time descending. An empty kind matches
// all kinds.
func ListRecentArtifacts(ctx context.Context, db *gorm.DB, ownerID, kind string, limit int) ([]domain.GeneratedArtifact, error) {
	q := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Limit(limit)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var out []domain.GeneratedArtifact
	err := q.Find(&out).Error
	return out, err
}
