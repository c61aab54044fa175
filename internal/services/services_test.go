package services

import (
	"testing"
	"time"

	"github.com/internhub/intern-management-api/internal/models"
	"github.com/internhub/intern-management-api/internal/policy"
	"github.com/internhub/intern-management-api/internal/repository"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	internRepo    repository.InternRepository
	taskRepo      repository.TaskRepository
	tokens        *TokenService
	authService   *AuthService
	internService *InternService
	taskService   *TaskService
	now           time.Time
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.InternProfile{}, &models.Task{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	env := &serviceTestEnv{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		internRepo: repository.NewInternRepository(db),
		taskRepo:   repository.NewTaskRepository(db),
		tokens:     NewTokenService("test-secret", time.Hour, 24*time.Hour),
		now:        time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
	}
	env.authService = NewAuthService(env.userRepo, env.tokens)
	env.internService = NewInternService(env.internRepo, env.userRepo, env.taskRepo)
	env.taskService = NewTaskService(env.taskRepo, env.internRepo, nil)
	env.taskService.now = func() time.Time { return env.now }
	return env
}

func (env *serviceTestEnv) admin(t *testing.T) policy.Principal {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		FirstName:    "Ada",
		LastName:     "Admin",
		Role:         models.RoleAdmin,
	}
	require.NoError(t, env.userRepo.Create(user))
	return policy.PrincipalFromUser(*user)
}

func (env *serviceTestEnv) intern(t *testing.T, name, email string) policy.Principal {
	t.Helper()
	profile, err := env.internService.CreateIntern(policy.Principal{ID: 0, Role: models.RoleAdmin}, CreateInternInput{
		Name:       name,
		Email:      email,
		Password:   "longenough",
		Department: "Eng",
	})
	require.NoError(t, err)
	return policy.PrincipalFromUser(profile.User)
}

func (env *serviceTestEnv) task(t *testing.T, admin policy.Principal, assignee uint64, extra map[string]interface{}) *models.Task {
	t.Helper()
	raw := map[string]interface{}{
		"title":               "Write onboarding notes",
		"assigned_to_user_id": float64(assignee),
		"due_date":            "2025-07-14",
	}
	for k, v := range extra {
		raw[k] = v
	}
	task, err := env.taskService.CreateTask(admin, raw)
	require.NoError(t, err)
	return task
}

func requireFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	verr, ok := err.(*ValidationError)
	require.True(t, ok, "expected *ValidationError, got %v", err)
	return verr.Fields
}
