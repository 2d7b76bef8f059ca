package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"knackhook/screening/internal/models"
	"knackhook/screening/internal/store"
)

// ResultArchiver periodically snapshots every saved evaluation record
// to timestamped JSON files on disk.
type ResultArchiver struct {
	store  store.Store
	config *ArchiverConfig
	logger *zap.Logger
	cron   *cron.Cron
}

// ArchiverConfig contains configuration for the archiver job
type ArchiverConfig struct {
	Schedule   string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ArchiveDir string // Directory to store archived files
	Enabled    bool   // Whether to run archives
}

func NewResultArchiver(s store.Store, config *ArchiverConfig, logger *zap.Logger) *ResultArchiver {
	return &ResultArchiver{
		store:  s,
		config: config,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start begins the scheduled archive job
func (ra *ResultArchiver) Start() error {
	if !ra.config.Enabled {
		ra.logger.Info("result archiving is disabled, skipping scheduler")
		return nil
	}

	_, err := ra.cron.AddFunc(ra.config.Schedule, func() {
		if err := ra.RunArchive(context.Background()); err != nil {
			ra.logger.Error("archive job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule archive job: %w", err)
	}

	ra.cron.Start()
	ra.logger.Info("result archiver started", zap.String("schedule", ra.config.Schedule))

	return nil
}

// Stop stops the scheduled archive job
func (ra *ResultArchiver) Stop() {
	if ra.cron != nil {
		ra.cron.Stop()
	}
}

// RunArchive performs a single archive run. Corrupt records are
// skipped, not surfaced.
func (ra *ResultArchiver) RunArchive(ctx context.Context) error {
	keys, err := ra.store.Keys(ctx, store.EvaluationKeyPrefix)
	if err != nil {
		return fmt.Errorf("failed to list evaluation records: %w", err)
	}
	if len(keys) == 0 {
		ra.logger.Info("no evaluation records to archive")
		return nil
	}

	records := []models.EvaluationRecord{}
	for _, key := range keys {
		raw, err := ra.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var record models.EvaluationRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			ra.logger.Warn("skipping corrupt evaluation record", zap.String("key", key), zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	if err := os.MkdirAll(ra.config.ArchiveDir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize archive: %w", err)
	}

	filename := fmt.Sprintf("evaluations-%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	path := filepath.Join(ra.config.ArchiveDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive file: %w", err)
	}

	ra.logger.Info("archived evaluation records",
		zap.Int("count", len(records)), zap.String("file", filename))

	return nil
}
