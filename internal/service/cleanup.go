package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"proofdeck/internal/domain"
)

// CleanupService periodically removes photo rows whose upload was never
// confirmed and revokes expired share links.
type CleanupService struct {
	albums        domain.AlbumRepository
	photos        domain.PhotoRepository
	pendingMaxAge time.Duration
	logger        *slog.Logger
	cron          *cron.Cron
}

// NewCleanupService creates a new CleanupService.
func NewCleanupService(albums domain.AlbumRepository, photos domain.PhotoRepository, pendingMaxAge time.Duration, logger *slog.Logger) *CleanupService {
	return &CleanupService{
		albums:        albums,
		photos:        photos,
		pendingMaxAge: pendingMaxAge,
		logger:        logger,
	}
}

// Start schedules the cleanup on the given cron spec and runs one sweep
// immediately so a restart cannot postpone overdue work by a full interval.
func (s *CleanupService) Start(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, s.sweep); err != nil {
		return fmt.Errorf("schedule cleanup %q: %w", schedule, err)
	}
	s.cron = c
	c.Start()
	go s.sweep()
	return nil
}

// Stop halts the scheduler; a sweep already in flight finishes.
func (s *CleanupService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *CleanupService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now().UTC()

	cleared, err := s.albums.ClearExpiredShares(ctx, now)
	if err != nil {
		s.logger.Error("clear expired shares", "error", err)
	} else if cleared > 0 {
		s.logger.Info("expired share links revoked", "count", cleared)
	}

	removed, err := s.photos.DeleteStalePending(ctx, now.Add(-s.pendingMaxAge))
	if err != nil {
		s.logger.Error("delete stale pending uploads", "error", err)
	} else if removed > 0 {
		s.logger.Info("stale pending uploads removed", "count", removed)
	}
}
