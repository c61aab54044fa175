package dto

import (
	"math"

	"github.com/internhub/intern-management-api/internal/models"
)

// InternDTO flattens an intern profile and its account
type InternDTO struct {
	ID         uint64      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	Department string      `json:"department"`
	Status     string      `json:"status"`
	Progress   int         `json:"progress"`
}

// TaskStatsDTO counts an intern's tasks by category. The categories overlap:
// a task with progress 0 and status IN_PROGRESS is only "not_started".
type TaskStatsDTO struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	NotStarted int `json:"not_started"`
}

// InternProgressDTO is the intern projection with task-derived progress.
// Progress is computed from tasks; ProfileProgress is the stored profile value.
type InternProgressDTO struct {
	InternDTO
	ProfileProgress int          `json:"profile_progress"`
	TaskStats       TaskStatsDTO `json:"task_stats"`
}

// ToInternDTO converts a profile with its preloaded account
func ToInternDTO(profile models.InternProfile) InternDTO {
	return InternDTO{
		ID:         profile.UserID,
		Name:       profile.User.FullName(),
		Email:      profile.User.Email,
		Role:       profile.User.Role,
		Department: profile.Department,
		Status:     profile.Status,
		Progress:   profile.Progress,
	}
}

// ToInternDTOs converts a slice of profiles
func ToInternDTOs(profiles []models.InternProfile) []InternDTO {
	items := make([]InternDTO, len(profiles))
	for i, p := range profiles {
		items[i] = ToInternDTO(p)
	}
	return items
}

// ComputeTaskStats counts tasks per category.
func ComputeTaskStats(tasks []models.Task) TaskStatsDTO {
	stats := TaskStatsDTO{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == models.TaskStatusCompleted {
			stats.Completed++
		}
		if t.Status == models.TaskStatusInProgress && t.Progress > 0 {
			stats.InProgress++
		}
		if t.Progress == 0 {
			stats.NotStarted++
		}
	}
	return stats
}

// CompletionProgress is round(100 * completed / total), or 0 without tasks.
// Halves round to even.
func CompletionProgress(stats TaskStatsDTO) int {
	if stats.Total == 0 {
		return 0
	}
	return int(math.RoundToEven(100 * float64(stats.Completed) / float64(stats.Total)))
}

// ToInternProgressDTO builds the with-progress projection from a profile and its tasks
func ToInternProgressDTO(profile models.InternProfile, tasks []models.Task) InternProgressDTO {
	stats := ComputeTaskStats(tasks)
	base := ToInternDTO(profile)
	base.Progress = CompletionProgress(stats)
	return InternProgressDTO{
		InternDTO:       base,
		ProfileProgress: profile.Progress,
		TaskStats:       stats,
	}
}
