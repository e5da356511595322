package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Jwuthri/resume-roaster/internal/repo"
)

// RetentionSweeper deletes anonymous uploads once they outlive the
// retention window. Owned uploads and all derived rows are kept; deletes
// cascade to extractions of the removed raw documents.
type RetentionSweeper struct {
	DB       *gorm.DB
	MaxAge   time.Duration
	Interval time.Duration
}

// Run sweeps on a fixed interval until the context is canceled. Intended
// to be started as a goroutine at boot.
func (s *RetentionSweeper) Run(ctx context.Context) {
	if s.Interval <= 0 || s.MaxAge <= 0 {
		return
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs a single retention pass.
func (s *RetentionSweeper) SweepOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.MaxAge)
	n, err := repo.DeleteAnonymousRawDocumentsBefore(ctx, s.DB, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("retention sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("retention sweep")
	}
}
