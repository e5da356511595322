// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for RawDocument
// and ExtractedDocument rows.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a row is not found, functions return ErrNotFound.
//   - Creating a row whose hash already exists returns ErrDuplicate;
//     callers re-read the winning row (check-then-create race contract).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/domain"
)

// FindRawDocumentByHash returns the upload identified by the digest of its
// raw bytes, or ErrNotFound.
func FindRawDocumentByHash(ctx context.Context, db *gorm.DB, fileHash string) (*domain.RawDocument, error) {
	var doc domain.RawDocument
	err := db.WithContext(ctx).
		Where("file_hash = ?", fileHash).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateRawDocument inserts a new upload row. The row ID is a randomly
// generated UUID and CreatedAt is set to UTC. Returns ErrDuplicate when a
// row with the same file hash already exists.
func CreateRawDocument(ctx context.Context, db *gorm.DB, doc *domain.RawDocument) (*domain.RawDocument, error) {
	doc.ID = uuid.NewString()
	doc.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(doc).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return doc, nil
}

// DeleteAnonymousRawDocumentsBefore removes anonymous uploads older than
// cutoff and returns the number of rows purged. Extracted rows cascade.
func DeleteAnonymousRawDocumentsBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("owner_id IS NULL AND created_at < ?", cutoff).
		Delete(&domain.RawDocument{})
	return res.RowsAffected, res.Error
}

// FindExtractedDocumentByHash returns the extraction keyed by contentHash,
// or ErrNotFound.
func FindExtractedDocumentByHash(ctx context.Context, db *gorm.DB, contentHash string) (*domain.ExtractedDocument, error) {
	var doc domain.ExtractedDocument
	err := db.WithContext(ctx).
		Preload("RawDocument").
		Where("content_hash = ?", contentHash).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateExtractedDocument inserts a new extraction row, returning
// ErrDuplicate on a content-hash collision.
func CreateExtractedDocument(ctx context.Context, db *gorm.DB, doc *domain.ExtractedDocument) (*domain.ExtractedDocument, error) {
	doc.ID = uuid.NewString()
	doc.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(doc).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return doc, nil
}

// ListDocumentsPage returns one page of uploads owned by ownerID, newest
// first.
func ListDocumentsPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.RawDocument, error) {
	var out []domain.RawDocument
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountDocuments returns the total number of uploads owned by ownerID.
func CountDocuments(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.RawDocument{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// DocumentsStats returns the owner's upload count and latest creation time
// (nil when the user has none). Used for weak ETags on list endpoints.
func DocumentsStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error) {
	var total int64
	if err := db.WithContext(ctx).
		Model(&domain.RawDocument{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}
	if total == 0 {
		return 0, nil, nil
	}
	var maxTS time.Time
	err := db.WithContext(ctx).
		Model(&domain.RawDocument{}).
		Where("owner_id = ?", ownerID).
		Select("MAX(created_at)").
		Scan(&maxTS).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return total, nil, nil
		}
		return 0, nil, err
	}
	return total, &maxTS, nil
}

// FindSummarizedDocumentByHash returns the summary keyed by contentHash.
func FindSummarizedDocumentByHash(ctx context.Context, db *gorm.DB, contentHash string) (*domain.SummarizedDocument, error) {
	var s domain.SummarizedDocument
	err := db.WithContext(ctx).
		Where("content_hash = ?", contentHash).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSummarizedDocument inserts a summary row, returning ErrDuplicate
// on a content-hash collision.
func CreateSummarizedDocument(ctx context.Context, db *gorm.DB, s *domain.SummarizedDocument) (*domain.SummarizedDocument, error) {
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
