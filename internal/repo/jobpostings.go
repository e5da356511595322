// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for extracted and
// summarized job postings.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/domain"
)

// FindJobPostingByHash returns the job posting keyed by contentHash, or
// ErrNotFound.
func FindJobPostingByHash(ctx context.Context, db *gorm.DB, contentHash string) (*domain.ExtractedJobPosting, error) {
	var jp domain.ExtractedJobPosting
	err := db.WithContext(ctx).
		Where("content_hash = ?", contentHash).
		First(&jp).Error
	if err != nil {
		return nil, err
	}
	return &jp, nil
}

// CreateJobPosting inserts a new job posting row, returning ErrDuplicate
// on a content-hash collision.
func CreateJobPosting(ctx context.Context, db *gorm.DB, jp *domain.ExtractedJobPosting) (*domain.ExtractedJobPosting, error) {
	jp.ID = uuid.NewString()
	jp.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(jp).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return jp, nil
}

// FindSummarizedJobPostingByHash returns the summary keyed by contentHash.
func FindSummarizedJobPostingByHash(ctx context.Context, db *gorm.DB, contentHash string) (*domain.SummarizedJobPosting, error) {
	var s domain.SummarizedJobPosting
	err := db.WithContext(ctx).
		Where("content_hash = ?", contentHash).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSummarizedJobPosting inserts a summary row, returning ErrDuplicate
// on a content-hash collision.
func CreateSummarizedJobPosting(ctx context.Context, db *gorm.DB, s *domain.SummarizedJobPosting) (*domain.SummarizedJobPosting, error) {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s, nil
}
