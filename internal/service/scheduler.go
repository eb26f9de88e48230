package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"chatcourse/internal/metrics"
	"chatcourse/internal/models"
)

// Scheduler drives the periodic catch-up loop: every tick it re-walks the
// configured spaces through the forward engine. Re-walking is cheap because
// already-synced messages short-circuit on their mapping rows; the checkpoint
// only bounds how much history a pass has to look at.
type Scheduler struct {
	engine   *ForwardSyncEngine
	store    MappingStore
	spaces   []models.SpaceMapping
	interval time.Duration
	logger   *logrus.Logger
}

func NewScheduler(engine *ForwardSyncEngine, store MappingStore, spaces []models.SpaceMapping, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		engine:   engine,
		store:    store,
		spaces:   spaces,
		interval: interval,
		logger:   logger,
	}
}

// InitialSync maps every configured space to a category and mirrors its
// backlog. Per-space failures are logged and the loop continues.
func (s *Scheduler) InitialSync(ctx context.Context) {
	s.logger.Info("Starting initial synchronization")

	for _, mapping := range s.spaces {
		log := s.logger.WithField("space_id", mapping.GoogleSpaceID)

		categoryID, err := s.engine.SyncSpaceToCategory(ctx, mapping)
		if err != nil {
			log.WithError(err).Error("Failed to sync space to category")
			continue
		}
		if categoryID == 0 {
			continue
		}

		synced, err := s.engine.SyncMessagesToPosts(ctx, mapping.GoogleSpaceID, "")
		if err != nil {
			log.WithError(err).Error("Failed to sync space messages")
			continue
		}
		log.WithField("synced", synced).Info("Initial space sync complete")
	}

	s.logger.Info("Initial synchronization complete")
}

// Run blocks, executing a catch-up pass every interval until the context is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.WithField("interval", s.interval.String()).Info("Starting catch-up scheduler")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Catch-up scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single catch-up pass over all configured spaces.
func (s *Scheduler) RunOnce(ctx context.Context) {
	runID := uuid.NewString()
	log := s.logger.WithField("run_id", runID)
	log.Info("Running periodic catch-up sync")
	start := time.Now()

	for _, mapping := range s.spaces {
		spaceLog := log.WithField("space_id", mapping.GoogleSpaceID)

		// Spaces added to the config since the last pass get mapped here.
		categoryID, err := s.engine.SyncSpaceToCategory(ctx, mapping)
		if err != nil {
			spaceLog.WithError(err).Error("Failed to ensure category mapping")
			continue
		}
		if categoryID == 0 {
			continue
		}

		checkpoint, err := s.store.GetSyncCheckpoint(ctx, mapping.GoogleSpaceID)
		if err != nil {
			spaceLog.WithError(err).Error("Failed to read sync checkpoint")
			continue
		}
		since := ""
		if checkpoint != nil {
			since = *checkpoint
			spaceLog = spaceLog.WithField("since", since)
		}

		synced, err := s.engine.SyncMessagesToPosts(ctx, mapping.GoogleSpaceID, since)
		if err != nil {
			spaceLog.WithError(err).Error("Periodic sync failed for space")
			continue
		}
		spaceLog.WithField("synced", synced).Info("Periodic sync pass for space complete")
	}

	metrics.RecordTimer("catchup_pass_duration", time.Since(start), nil)
	metrics.SetGauge("catchup_last_run_unix", float64(time.Now().Unix()), nil, "Completion time of the last catch-up pass")
	log.Info("Periodic catch-up sync complete")
}
