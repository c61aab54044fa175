package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/internhub/intern-management-api/internal/dto"
	apierrors "github.com/internhub/intern-management-api/internal/errors"
	"github.com/internhub/intern-management-api/internal/models"
	"github.com/internhub/intern-management-api/internal/services"
	"github.com/internhub/intern-management-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user.
// Admins may filter by assigned_to, status and priority.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	input := services.ListTasksInput{
		Pagination: utils.GetPaginationParams(c),
	}
	fieldErrs := apierrors.FieldErrors{}

	if raw := c.Query("assigned_to"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fieldErrs.Add("assigned_to", "A valid integer is required.")
		} else {
			input.AssignedToID = &id
		}
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			fieldErrs.Add("status", "Select a valid choice. "+raw+" is not one of the available choices.")
		} else {
			input.Status = &status
		}
	}
	if raw := c.Query("priority"); raw != "" {
		priority, ok := models.ParsePriority(raw)
		if !ok {
			fieldErrs.Add("priority", "Invalid priority value")
		} else {
			input.Priority = &priority
		}
	}
	if len(fieldErrs) > 0 {
		apierrors.ValidationFailed(c, fieldErrs)
		return
	}

	tasks, total, err := h.taskService.ListTasks(principal, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	utils.SetTotalCountHeader(c, input.Pagination, total)
	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(principal, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task (admin only)
func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(principal, rawReq)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask partially updates a task. Interns may only change progress
// related fields of their own tasks; other keys are ignored.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(principal, taskID, rawReq)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task (admin only)
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(principal, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// InteractTask applies one of the start, update_progress or complete actions
func (h *TaskHandler) InteractTask(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	action, _ := rawReq["action"].(string)

	task, err := h.taskService.Interact(principal, taskID, action, rawReq["progress"])
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// GenerateTasks drafts task suggestions from text using AI. Nothing is saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingFailed(c, err)
		return
	}

	generated, err := h.taskService.GenerateTaskDrafts(c.Request.Context(), principal, req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	drafts := make([]dto.TaskDraftDTO, len(generated))
	for i, g := range generated {
		drafts[i] = toTaskDraftDTO(g)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}

func toTaskDraftDTO(g services.GeneratedTask) dto.TaskDraftDTO {
	return dto.TaskDraftDTO{
		Title:       g.Title,
		Description: g.Description,
		DueDate:     g.DueDate,
		Priority:    models.TaskPriority(g.Priority).Label(),
	}
}

func respondTaskError(c *gin.Context, err error) {
	if respondValidationError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "You do not have permission to perform this action.")
	case errors.Is(err, services.ErrInvalidAction):
		apierrors.InvalidAction(c, "Invalid action")
	case errors.Is(err, services.ErrProgressMissing):
		apierrors.ValidationFailed(c, apierrors.FieldErrors{"progress": {"Progress value required."}})
	case errors.Is(err, services.ErrInvalidProgress):
		apierrors.ValidationFailed(c, apierrors.FieldErrors{"progress": {"Invalid progress value."}})
	case errors.Is(err, services.ErrTextRequired):
		apierrors.ValidationFailed(c, apierrors.FieldErrors{"text": {"This field may not be blank."}})
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAIUnavailable):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.RespondWithError(c, http.StatusUnprocessableEntity,
			apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, "AI did not generate any tasks"))
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
