package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/internhub/intern-management-api/internal/constants"
	"github.com/internhub/intern-management-api/internal/database"
	"github.com/internhub/intern-management-api/internal/middleware"
	"github.com/internhub/intern-management-api/internal/models"
	"github.com/internhub/intern-management-api/internal/policy"
	"github.com/internhub/intern-management-api/internal/repository"
	"github.com/internhub/intern-management-api/internal/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type apiTestEnv struct {
	db            *gorm.DB
	router        *gin.Engine
	authService   *services.AuthService
	internService *services.InternService
	taskService   *services.TaskService
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	database.SetDB(db)
	return db
}

func setupAPITestEnv(t *testing.T, drafter services.TaskDrafter) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := openTestDB(t)
	userRepo := repository.NewUserRepository(db)
	internRepo := repository.NewInternRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	tokens := services.NewTokenService("test-secret", time.Hour, 24*time.Hour)
	env := &apiTestEnv{
		db:            db,
		authService:   services.NewAuthService(userRepo, tokens),
		internService: services.NewInternService(internRepo, userRepo, taskRepo),
		taskService:   services.NewTaskService(taskRepo, internRepo, drafter),
	}

	authHandler := NewAuthHandler(env.authService)
	internHandler := NewInternHandler(env.internService)
	taskHandler := NewTaskHandler(env.taskService)
	requireAuth := middleware.RequireAuth(env.authService)

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))

	api := r.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register/", authHandler.Register)
	auth.POST("/login/", authHandler.Login)
	auth.POST("/refresh/", authHandler.Refresh)
	auth.POST("/logout/", authHandler.Logout)
	auth.GET("/me/", requireAuth, authHandler.GetCurrentUser)

	interns := api.Group("/interns", requireAuth)
	interns.GET("/", internHandler.ListInterns)
	interns.POST("/", internHandler.CreateIntern)
	interns.GET("/with-progress/", internHandler.ListInternsWithProgress)
	interns.GET("/:id/", internHandler.GetIntern)

	tasks := api.Group("/tasks", requireAuth)
	tasks.GET("/", taskHandler.ListTasks)
	tasks.POST("/", taskHandler.CreateTask)
	tasks.POST("/generate/", taskHandler.GenerateTasks)
	tasks.GET("/:id/", taskHandler.GetTask)
	tasks.PATCH("/:id/", taskHandler.UpdateTask)
	tasks.DELETE("/:id/", taskHandler.DeleteTask)
	tasks.POST("/:id/interact/", taskHandler.InteractTask)

	env.router = r
	return env
}

// seedAdmin creates an ADMIN account and returns it with an access token.
func (env *apiTestEnv) seedAdmin(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("adminpass"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, PasswordHash: string(hash), FirstName: "Ada", LastName: "Admin", Role: models.RoleAdmin}
	require.NoError(t, env.db.Create(user).Error)
	return user, env.accessToken(t, *user)
}

// seedIntern creates an INTERN account with profile and returns it with an access token.
func (env *apiTestEnv) seedIntern(t *testing.T, name, email string) (*models.User, string) {
	t.Helper()
	profile, err := env.internService.CreateIntern(policyAdmin(), services.CreateInternInput{
		Name:       name,
		Email:      email,
		Password:   "longenough",
		Department: "Eng",
	})
	require.NoError(t, err)
	return &profile.User, env.accessToken(t, profile.User)
}

func (env *apiTestEnv) accessToken(t *testing.T, user models.User) string {
	t.Helper()
	access, _, err := env.authService.IssueTokens(user)
	require.NoError(t, err)
	return access
}

func (env *apiTestEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details"`
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

func policyAdmin() policy.Principal {
	return policy.Principal{Role: models.RoleAdmin}
}
