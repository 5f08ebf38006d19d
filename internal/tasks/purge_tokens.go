package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ExpiredTokenPurger deletes revoked refresh tokens that expired before now.
type ExpiredTokenPurger interface {
	PurgeExpired(now time.Time) (int64, error)
}

// PurgeRevokedTokensTask drops revocation entries whose token has expired
// anyway. An expired token fails verification on its own, so the entry is
// no longer needed.
type PurgeRevokedTokensTask struct{}

// Config returns the queue configuration for token purge tasks.
func (t PurgeRevokedTokensTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_revoked_tokens",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PurgeRevokedTokensProcessor creates a processor for PurgeRevokedTokensTask.
// logger may be nil.
func PurgeRevokedTokensProcessor(purger ExpiredTokenPurger, logger MaintenanceLogger) backlite.QueueProcessor[PurgeRevokedTokensTask] {
	return func(ctx context.Context, task PurgeRevokedTokensTask) error {
		if purger == nil {
			return fmt.Errorf("token purger not configured")
		}

		deleted, err := purger.PurgeExpired(time.Now())
		if logger != nil {
			logger.LogMaintenance("purge_revoked_tokens", fmt.Sprintf("Purged %d expired revoked tokens", deleted), err)
		}
		if err != nil {
			return fmt.Errorf("purge revoked tokens: %w", err)
		}

		log.Printf("[TASK] Purged %d expired revoked tokens", deleted)
		return nil
	}
}

// NewPurgeRevokedTokensQueue creates a backlite queue for token purge tasks.
func NewPurgeRevokedTokensQueue(purger ExpiredTokenPurger, logger MaintenanceLogger) backlite.Queue {
	return backlite.NewQueue(PurgeRevokedTokensProcessor(purger, logger))
}
