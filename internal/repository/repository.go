package repository

import (
	"github.com/internhub/intern-management-api/internal/models"
	"github.com/internhub/intern-management-api/internal/utils"
)

// UserRepository defines the interface for account data access
type UserRepository interface {
	// Create creates a new account
	Create(user *models.User) error

	// FindByID finds an account by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds an account by its normalized email
	FindByEmail(email string) (*models.User, error)

	// ExistsByEmail reports whether an account already uses the email
	ExistsByEmail(email string) (bool, error)

	// Delete removes an account, its intern profile and that profile's tasks,
	// and clears assigned_by on tasks the account created.
	Delete(id uint64) error
}

// InternRepository defines the interface for intern profile data access
type InternRepository interface {
	// CreateWithUser creates an INTERN account and its profile in one transaction.
	CreateWithUser(user *models.User, profile *models.InternProfile) error

	// FindByUserID finds the profile of an INTERN account, with the account preloaded
	FindByUserID(userID uint64) (*models.InternProfile, error)

	// List retrieves profiles of INTERN accounts ordered by account id
	List(filter InternFilter) ([]models.InternProfile, int64, error)
}

// InternFilter holds filtering options for listing intern profiles
type InternFilter struct {
	UserID     *uint64
	Pagination utils.PaginationParams
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListByAssignees retrieves every task assigned to the given intern accounts
	ListByAssignees(userIDs []uint64) ([]models.Task, error)

	// Update persists every column of a task
	Update(task *models.Task) error

	// Delete removes a task
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	AssignedToID *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	Pagination   utils.PaginationParams
}

// Relations preloaded for task read projections.
var TaskReadPreloads = []string{"AssignedTo", "AssignedTo.User"}
