package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/internhub/intern-management-api/internal/constants"
	"github.com/internhub/intern-management-api/internal/lifecycle"
	"github.com/internhub/intern-management-api/internal/logging"
	"github.com/internhub/intern-management-api/internal/models"
	"github.com/internhub/intern-management-api/internal/policy"
	"github.com/internhub/intern-management-api/internal/repository"
	"github.com/internhub/intern-management-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrTextRequired           = errors.New("text is required")
)

// Interaction actions accepted by Interact.
const (
	ActionStart          = "start"
	ActionUpdateProgress = "update_progress"
	ActionComplete       = "complete"
)

// TaskDrafter proposes tasks from free text.
type TaskDrafter interface {
	DraftTasks(ctx context.Context, text string) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo   repository.TaskRepository
	internRepo repository.InternRepository
	drafter    TaskDrafter
	now        func() time.Time
}

// NewTaskService creates a new TaskService. drafter may be nil.
func NewTaskService(taskRepo repository.TaskRepository, internRepo repository.InternRepository, drafter TaskDrafter) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		internRepo: internRepo,
		drafter:    drafter,
		now:        time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	AssignedToID *uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	Pagination   utils.PaginationParams
}

// ListTasks returns tasks visible to principal. Non-admins only ever see
// their own tasks whatever filters they pass.
func (s *TaskService) ListTasks(principal policy.Principal, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		AssignedToID: input.AssignedToID,
		Status:       input.Status,
		Priority:     input.Priority,
		Pagination:   input.Pagination,
	}
	if !policy.IsAdmin(principal) {
		self := principal.ID
		filter.AssignedToID = &self
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask retrieves a task the principal may view
func (s *TaskService) GetTask(principal policy.Principal, taskID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewTask(principal, *task) {
		return nil, ErrForbidden
	}
	return task, nil
}

// CreateTask creates a task from a raw write payload
func (s *TaskService) CreateTask(principal policy.Principal, raw map[string]interface{}) (*models.Task, error) {
	if !policy.CanCreateTask(principal) {
		return nil, ErrForbidden
	}

	verr := newValidationError()
	for _, key := range []string{fieldTitle, fieldAssignedToUserID, fieldDueDate} {
		if v, ok := raw[key]; !ok || v == nil {
			verr.add(key, msgRequired)
		}
	}

	assignedBy := principal.ID
	task := &models.Task{
		AssignedByID: &assignedBy,
		Priority:     models.TaskPriorityMedium,
		Status:       models.TaskStatusInProgress,
	}
	if err := applyTaskFields(task, presentOnly(raw, verr), nil, s.isIntern, verr); err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	lifecycle.Apply(task, s.now())

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"task_id":     task.ID,
		"assigned_to": task.AssignedToID,
		"assigned_by": principal.ID,
	}).Info("task created")

	return s.reload(task.ID)
}

// UpdateTask applies a partial raw write payload. Keys outside the
// principal's field mask are ignored.
func (s *TaskService) UpdateTask(principal policy.Principal, taskID uint64, raw map[string]interface{}) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	decision := policy.CanUpdateTask(principal, *task)
	if !decision.Allowed {
		return nil, ErrForbidden
	}

	verr := newValidationError()
	if err := applyTaskFields(task, raw, decision.Fields, s.isIntern, verr); err != nil {
		return nil, err
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	return s.persist(task)
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(principal policy.Principal, taskID uint64) error {
	if _, err := s.findTask(taskID); err != nil {
		return err
	}
	if !policy.CanDeleteTask(principal) {
		return ErrForbidden
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"task_id":    taskID,
		"deleted_by": principal.ID,
	}).Info("task deleted")
	return nil
}

// Interact applies a named action. progress is the raw payload value and is
// only read by update_progress; nil means absent.
func (s *TaskService) Interact(principal policy.Principal, taskID uint64, action string, progress interface{}) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanInteractWithTask(principal, *task) {
		return nil, ErrForbidden
	}

	switch action {
	case ActionStart:
		task.IsStarted = true
	case ActionUpdateProgress:
		if progress == nil {
			return nil, ErrProgressMissing
		}
		value, ok := coerceInt(progress)
		if !ok {
			return nil, ErrInvalidProgress
		}
		task.Progress = lifecycle.ClampProgress(value)
	case ActionComplete:
		task.Progress = constants.MaxProgress
	default:
		return nil, ErrInvalidAction
	}

	updated, err := s.persist(task)
	if err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"task_id":  taskID,
		"action":   action,
		"actor":    principal.ID,
		"progress": updated.Progress,
		"status":   updated.Status,
	}).Info("task interaction applied")

	return updated, nil
}

// GenerateTaskDrafts asks the configured drafter for task proposals. Nothing
// is persisted.
func (s *TaskService) GenerateTaskDrafts(ctx context.Context, principal policy.Principal, text string) ([]GeneratedTask, error) {
	if !policy.CanGenerateTasks(principal) {
		return nil, ErrForbidden
	}
	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}

	generated, err := s.drafter.DraftTasks(ctx, text)
	if err != nil {
		return nil, err
	}

	drafts := make([]GeneratedTask, 0, len(generated))
	for _, g := range generated {
		if len(drafts) == constants.MaxAIGeneratedTasks {
			break
		}
		if draft, ok := normalizeDraft(g); ok {
			drafts = append(drafts, draft)
		}
	}
	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	return drafts, nil
}

func normalizeDraft(g GeneratedTask) (GeneratedTask, bool) {
	title := strings.TrimSpace(g.Title)
	if title == "" {
		return GeneratedTask{}, false
	}
	if runes := []rune(title); len(runes) > maxTitleLength {
		title = strings.TrimSpace(string(runes[:maxTitleLength]))
	}

	priority, ok := models.ParsePriority(g.Priority)
	if !ok {
		priority = models.TaskPriorityMedium
	}

	dueDate := strings.TrimSpace(g.DueDate)
	if _, err := time.Parse(constants.DueDateLayout, dueDate); err != nil {
		dueDate = ""
	}

	return GeneratedTask{
		Title:       title,
		Description: strings.TrimSpace(g.Description),
		DueDate:     dueDate,
		Priority:    string(priority),
	}, true
}

func (s *TaskService) persist(task *models.Task) (*models.Task, error) {
	lifecycle.Apply(task, s.now())

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.reload(task.ID)
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, repository.TaskReadPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) reload(taskID uint64) (*models.Task, error) {
	return s.findTask(taskID)
}

func (s *TaskService) isIntern(userID uint64) (bool, error) {
	if _, err := s.internRepo.FindByUserID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to find intern: %w", err)
	}
	return true, nil
}

// presentOnly drops nil values whose required error was already recorded.
func presentOnly(raw map[string]interface{}, verr *ValidationError) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if _, missing := verr.Fields[k]; missing && v == nil {
			continue
		}
		out[k] = v
	}
	return out
}
