package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

type TaskStatus string

const (
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

var priorityLabels = map[TaskPriority]string{
	TaskPriorityLow:    "Low",
	TaskPriorityMedium: "Medium",
	TaskPriorityHigh:   "High",
}

var statusLabels = map[TaskStatus]string{
	TaskStatusInProgress: "In Progress",
	TaskStatusCompleted:  "Completed",
}

// Label returns the human-readable priority, or the raw code when unknown.
func (p TaskPriority) Label() string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return string(p)
}

// Label returns the human-readable status, or the raw code when unknown.
func (s TaskStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParsePriority accepts a code or a label, case-insensitively.
func ParsePriority(value string) (TaskPriority, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for code, label := range priorityLabels {
		if normalized == strings.ToLower(string(code)) || normalized == strings.ToLower(label) {
			return code, true
		}
	}
	return "", false
}

// ParseStatus accepts a code or a label, case-insensitively.
func ParseStatus(value string) (TaskStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for code, label := range statusLabels {
		if normalized == strings.ToLower(string(code)) || normalized == strings.ToLower(label) {
			return code, true
		}
	}
	return "", false
}

type Task struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Title        string         `gorm:"type:varchar(200);not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	AssignedToID uint64         `gorm:"not null;index" json:"assigned_to_id"`
	AssignedByID *uint64        `gorm:"index" json:"assigned_by_id"`
	DueDate      datatypes.Date `gorm:"not null" json:"due_date"`
	Priority     TaskPriority   `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	Status       TaskStatus     `gorm:"type:varchar(20);not null;default:'IN_PROGRESS'" json:"status"`
	Progress     int            `gorm:"not null;default:0" json:"progress"`
	IsStarted    bool           `gorm:"not null;default:false" json:"is_started"`
	StartedAt    *time.Time     `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Relations
	AssignedTo InternProfile `gorm:"foreignKey:AssignedToID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AssignedBy *User         `gorm:"foreignKey:AssignedByID;constraint:OnDelete:SET NULL" json:"-"`
}
