package dto

import (
	"time"

	"github.com/internhub/intern-management-api/internal/constants"
	"github.com/internhub/intern-management-api/internal/models"
)

// TaskDTO is the read shape of a task. Keys differ from the write payload
// (dueDate, assignedTo) and priority/status carry labels instead of codes.
type TaskDTO struct {
	ID               uint64     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	DueDate          string     `json:"dueDate"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	Progress         int        `json:"progress"`
	AssignedTo       string     `json:"assignedTo"`
	AssignedToUserID uint64     `json:"assignedToUserId"`
	AssignedByID     *uint64    `json:"assigned_by_id"`
	IsStarted        bool       `json:"is_started"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TaskDraftDTO is an AI-suggested task awaiting review
type TaskDraftDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate,omitempty"`
	Priority    string `json:"priority"`
}

// AssigneeName renders the assignee as "first last", falling back to email,
// or "Unknown" when the account was not loaded.
func AssigneeName(task models.Task) string {
	user := task.AssignedTo.User
	if user.ID == 0 && user.Email == "" {
		return "Unknown"
	}
	return user.DisplayName()
}

// ToTaskDTO converts a Task model with preloaded assignee to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		DueDate:          time.Time(task.DueDate).Format(constants.DueDateLayout),
		Priority:         task.Priority.Label(),
		Status:           task.Status.Label(),
		Progress:         task.Progress,
		AssignedTo:       AssigneeName(task),
		AssignedToUserID: task.AssignedToID,
		AssignedByID:     task.AssignedByID,
		IsStarted:        task.IsStarted,
		StartedAt:        task.StartedAt,
		CompletedAt:      task.CompletedAt,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}
