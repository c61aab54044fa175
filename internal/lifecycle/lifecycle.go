// Package lifecycle derives task status and timestamps from progress writes.
package lifecycle

import (
	"time"

	"github.com/internhub/intern-management-api/internal/constants"
	"github.com/internhub/intern-management-api/internal/models"
)

// ClampProgress bounds a raw progress value to [0, 100].
func ClampProgress(progress int) int {
	if progress < constants.MinProgress {
		return constants.MinProgress
	}
	if progress > constants.MaxProgress {
		return constants.MaxProgress
	}
	return progress
}

// Apply normalizes derived fields after field assignment and before persistence.
// It must run on every write; it is idempotent and never overwrites an existing
// started_at or completed_at.
func Apply(task *models.Task, now time.Time) {
	task.Progress = ClampProgress(task.Progress)

	if task.IsStarted && task.StartedAt == nil {
		started := now
		task.StartedAt = &started
	}

	if task.Progress == constants.MaxProgress {
		if task.CompletedAt == nil {
			completed := now
			task.CompletedAt = &completed
		}
		task.Status = models.TaskStatusCompleted
		return
	}

	if task.Status == models.TaskStatusCompleted {
		task.Status = models.TaskStatusInProgress
		task.CompletedAt = nil
	}
}
