package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/internhub/intern-management-api/internal/models"
	"github.com/internhub/intern-management-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService_CreateTask_Defaults(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")

	task := env.task(t, admin, ian.ID, map[string]interface{}{"priority": "high"})

	assert.Equal(t, models.TaskPriorityHigh, task.Priority)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.False(t, task.IsStarted)
	assert.Nil(t, task.StartedAt)
	assert.Nil(t, task.CompletedAt)
	require.NotNil(t, task.AssignedByID)
	assert.Equal(t, admin.ID, *task.AssignedByID)
	assert.Equal(t, ian.ID, task.AssignedToID)
	assert.Equal(t, "Ian Intern", task.AssignedTo.User.DisplayName())
	assert.Equal(t, "2025-07-14", time.Time(task.DueDate).Format("2006-01-02"))
}

func TestTaskService_CreateTask_Validation(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")

	_, err := env.taskService.CreateTask(admin, map[string]interface{}{})
	fields := requireFields(t, err)
	assert.Equal(t, []string{msgRequired}, fields["title"])
	assert.Equal(t, []string{msgRequired}, fields["assigned_to_user_id"])
	assert.Equal(t, []string{msgRequired}, fields["due_date"])

	_, err = env.taskService.CreateTask(admin, map[string]interface{}{
		"title":               "Bad",
		"assigned_to_user_id": float64(admin.ID),
		"due_date":            "14/07/2025",
		"priority":            "urgent",
		"progress":            "lots",
	})
	fields = requireFields(t, err)
	assert.Equal(t, []string{msgInvalidIntern}, fields["assigned_to_user_id"])
	assert.Equal(t, []string{msgInvalidDate}, fields["due_date"])
	assert.Equal(t, []string{msgInvalidPriority}, fields["priority"])
	assert.Equal(t, []string{msgInvalidInteger}, fields["progress"])

	var count int64
	require.NoError(t, env.db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = env.taskService.CreateTask(ian, map[string]interface{}{"title": "Mine"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestTaskService_CompletedThenReopened(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")

	task := env.task(t, admin, ian.ID, map[string]interface{}{"progress": float64(100)})
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	require.NotNil(t, task.CompletedAt)

	updated, err := env.taskService.UpdateTask(ian, task.ID, map[string]interface{}{"progress": float64(50)})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)
	assert.Nil(t, updated.CompletedAt)
}

func TestTaskService_UpdateTask_InternFieldMask(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")
	olga := env.intern(t, "Olga Other", "olga@example.com")
	task := env.task(t, admin, ian.ID, nil)

	updated, err := env.taskService.UpdateTask(ian, task.ID, map[string]interface{}{
		"title":               "Renamed by intern",
		"assigned_to_user_id": float64(olga.ID),
		"is_started":          true,
		"progress":            float64(30),
	})
	require.NoError(t, err)
	assert.Equal(t, "Write onboarding notes", updated.Title)
	assert.Equal(t, ian.ID, updated.AssignedToID)
	assert.True(t, updated.IsStarted)
	require.NotNil(t, updated.StartedAt)
	assert.WithinDuration(t, env.now, *updated.StartedAt, time.Second)
	assert.Equal(t, 30, updated.Progress)

	_, err = env.taskService.UpdateTask(olga, task.ID, map[string]interface{}{"progress": float64(90)})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.taskService.UpdateTask(admin, 9999, map[string]interface{}{"title": "x"})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_UpdateTask_AdminReassigns(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")
	olga := env.intern(t, "Olga Other", "olga@example.com")
	task := env.task(t, admin, ian.ID, nil)

	updated, err := env.taskService.UpdateTask(admin, task.ID, map[string]interface{}{
		"title":               "Review PRs",
		"assigned_to_user_id": float64(olga.ID),
		"priority":            "Low",
		"status":              "Completed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Review PRs", updated.Title)
	assert.Equal(t, olga.ID, updated.AssignedToID)
	assert.Equal(t, "Olga Other", updated.AssignedTo.User.DisplayName())
	assert.Equal(t, models.TaskPriorityLow, updated.Priority)
	// Completed without full progress is reverted.
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)
	assert.Nil(t, updated.CompletedAt)
}

func TestTaskService_ListTasks_InternScopedToOwnTasks(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")
	olga := env.intern(t, "Olga Other", "olga@example.com")
	mine := env.task(t, admin, ian.ID, nil)
	env.task(t, admin, olga.ID, nil)
	env.task(t, admin, olga.ID, nil)

	otherID := olga.ID
	tasks, total, err := env.taskService.ListTasks(ian, ListTasksInput{AssignedToID: &otherID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, tasks, 1)
	assert.Equal(t, mine.ID, tasks[0].ID)

	tasks, total, err = env.taskService.ListTasks(admin, ListTasksInput{AssignedToID: &otherID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, tasks, 2)

	tasks, total, err = env.taskService.ListTasks(admin, ListTasksInput{
		Pagination: utils.PaginationParams{Enabled: true, Page: 2, Limit: 2, Offset: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, tasks, 1)
}

func TestTaskService_GetTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")
	olga := env.intern(t, "Olga Other", "olga@example.com")
	task := env.task(t, admin, ian.ID, nil)

	got, err := env.taskService.GetTask(ian, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = env.taskService.GetTask(olga, task.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.taskService.GetTask(admin, 4242)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskService_DeleteTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")
	task := env.task(t, admin, ian.ID, nil)

	require.ErrorIs(t, env.taskService.DeleteTask(ian, task.ID), ErrForbidden)
	require.NoError(t, env.taskService.DeleteTask(admin, task.ID))
	require.ErrorIs(t, env.taskService.DeleteTask(admin, task.ID), ErrTaskNotFound)
}

func TestTaskService_Interact(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")
	olga := env.intern(t, "Olga Other", "olga@example.com")
	task := env.task(t, admin, ian.ID, nil)

	started, err := env.taskService.Interact(ian, task.ID, ActionStart, nil)
	require.NoError(t, err)
	assert.True(t, started.IsStarted)
	require.NotNil(t, started.StartedAt)
	firstStart := *started.StartedAt

	env.now = env.now.Add(2 * time.Hour)
	restarted, err := env.taskService.Interact(ian, task.ID, ActionStart, nil)
	require.NoError(t, err)
	assert.WithinDuration(t, firstStart, *restarted.StartedAt, time.Second)

	clamped, err := env.taskService.Interact(ian, task.ID, ActionUpdateProgress, "150")
	require.NoError(t, err)
	assert.Equal(t, 100, clamped.Progress)
	assert.Equal(t, models.TaskStatusCompleted, clamped.Status)
	require.NotNil(t, clamped.CompletedAt)

	low, err := env.taskService.Interact(ian, task.ID, ActionUpdateProgress, float64(-5))
	require.NoError(t, err)
	assert.Equal(t, 0, low.Progress)
	assert.Equal(t, models.TaskStatusInProgress, low.Status)
	assert.Nil(t, low.CompletedAt)

	_, err = env.taskService.Interact(ian, task.ID, ActionUpdateProgress, "abc")
	require.ErrorIs(t, err, ErrInvalidProgress)

	_, err = env.taskService.Interact(ian, task.ID, ActionUpdateProgress, nil)
	require.ErrorIs(t, err, ErrProgressMissing)

	_, err = env.taskService.Interact(ian, task.ID, "pause", nil)
	require.ErrorIs(t, err, ErrInvalidAction)

	_, err = env.taskService.Interact(olga, task.ID, ActionComplete, nil)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.taskService.Interact(ian, 777, ActionComplete, nil)
	require.ErrorIs(t, err, ErrTaskNotFound)

	done, err := env.taskService.Interact(admin, task.ID, ActionComplete, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, models.TaskStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.WithinDuration(t, env.now, *done.CompletedAt, time.Second)
}

type stubDrafter struct {
	tasks []GeneratedTask
	err   error
	text  string
}

func (s *stubDrafter) DraftTasks(_ context.Context, text string) ([]GeneratedTask, error) {
	s.text = text
	return s.tasks, s.err
}

func TestTaskService_GenerateTaskDrafts(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")

	_, err := env.taskService.GenerateTaskDrafts(context.Background(), admin, "plan the week")
	require.ErrorIs(t, err, ErrAIServiceNotConfigured)

	drafter := &stubDrafter{tasks: []GeneratedTask{
		{Title: "  Set up laptop ", Description: "accounts and VPN", DueDate: "2025-07-02", Priority: "high"},
		{Title: "", Description: "dropped"},
		{Title: "Read handbook", DueDate: "next week", Priority: "whenever"},
	}}
	env.taskService.drafter = drafter

	_, err = env.taskService.GenerateTaskDrafts(context.Background(), ian, "plan the week")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.taskService.GenerateTaskDrafts(context.Background(), admin, "   ")
	require.ErrorIs(t, err, ErrTextRequired)

	drafts, err := env.taskService.GenerateTaskDrafts(context.Background(), admin, " plan the week ")
	require.NoError(t, err)
	assert.Equal(t, "plan the week", drafter.text)
	require.Len(t, drafts, 2)
	assert.Equal(t, GeneratedTask{Title: "Set up laptop", Description: "accounts and VPN", DueDate: "2025-07-02", Priority: "HIGH"}, drafts[0])
	assert.Equal(t, GeneratedTask{Title: "Read handbook", Priority: "MEDIUM"}, drafts[1])

	var count int64
	require.NoError(t, env.db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)

	drafter.tasks = nil
	_, err = env.taskService.GenerateTaskDrafts(context.Background(), admin, "nothing here")
	require.ErrorIs(t, err, ErrAINoTasksGenerated)

	drafter.err = ErrAIUnavailable
	_, err = env.taskService.GenerateTaskDrafts(context.Background(), admin, "anything")
	require.True(t, errors.Is(err, ErrAIUnavailable))
}

func TestCoerceInt(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
		ok   bool
	}{
		{float64(42), 42, true},
		{float64(12.9), 12, true},
		{" 7 ", 7, true},
		{"12.5", 0, false},
		{"abc", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := coerceInt(tc.in)
		assert.Equal(t, tc.ok, ok, "input %v", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %v", tc.in)
		}
	}
}

func TestTaskService_CreateTask_TitleLengthCountsCharacters(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")

	title := strings.Repeat("é", 150)
	task := env.task(t, admin, ian.ID, map[string]interface{}{"title": title})
	assert.Equal(t, title, task.Title)

	_, err := env.taskService.CreateTask(admin, map[string]interface{}{
		"title":               strings.Repeat("é", 201),
		"assigned_to_user_id": float64(ian.ID),
		"due_date":            "2025-07-14",
	})
	fields := requireFields(t, err)
	assert.Equal(t, []string{msgTitleTooLong}, fields["title"])
}

func TestNormalizeDraft_TruncatesOnCharacterBoundary(t *testing.T) {
	draft, ok := normalizeDraft(GeneratedTask{Title: strings.Repeat("é", 250)})
	require.True(t, ok)
	assert.True(t, utf8.ValidString(draft.Title))
	assert.Equal(t, maxTitleLength, utf8.RuneCountInString(draft.Title))
}

func TestTaskService_UpdateTask_InternSetsCompletedAtBeforeFullProgress(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.admin(t)
	ian := env.intern(t, "Ian Intern", "ian@example.com")
	task := env.task(t, admin, ian.ID, map[string]interface{}{"progress": float64(50)})

	updated, err := env.taskService.UpdateTask(ian, task.ID, map[string]interface{}{
		"completed_at": "2025-07-02T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC).Equal(*updated.CompletedAt))
}
