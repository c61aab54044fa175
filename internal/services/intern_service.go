package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/internhub/intern-management-api/internal/constants"
	"github.com/internhub/intern-management-api/internal/logging"
	"github.com/internhub/intern-management-api/internal/models"
	"github.com/internhub/intern-management-api/internal/policy"
	"github.com/internhub/intern-management-api/internal/repository"
	"github.com/internhub/intern-management-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrFailedToCreateIntern = errors.New("failed to create intern")

// InternService handles intern profile business logic
type InternService struct {
	internRepo repository.InternRepository
	userRepo   repository.UserRepository
	taskRepo   repository.TaskRepository
}

// NewInternService creates a new InternService
func NewInternService(internRepo repository.InternRepository, userRepo repository.UserRepository, taskRepo repository.TaskRepository) *InternService {
	return &InternService{
		internRepo: internRepo,
		userRepo:   userRepo,
		taskRepo:   taskRepo,
	}
}

// CreateInternInput represents input for creating an intern account and profile
type CreateInternInput struct {
	Name       string
	Email      string
	Password   string
	Department string
}

// InternWithTasks pairs a profile with every task assigned to it
type InternWithTasks struct {
	Profile models.InternProfile
	Tasks   []models.Task
}

// CreateIntern validates input and creates the INTERN account and its profile together.
func (s *InternService) CreateIntern(principal policy.Principal, input CreateInternInput) (*models.InternProfile, error) {
	if !policy.CanCreateIntern(principal) {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	email := models.NormalizeEmail(input.Email)
	department := strings.TrimSpace(input.Department)

	verr := newValidationError()
	if name == "" {
		verr.add("name", msgRequired)
	}
	if email == "" {
		verr.add("email", msgRequired)
	}
	if input.Password == "" {
		verr.add("password", msgRequired)
	}
	if department == "" {
		verr.add("department", msgRequired)
	}
	if len(input.Password) < constants.MinPasswordLength {
		verr.add("password", msgPasswordShort)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	first, last := models.SplitName(name)
	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    first,
		LastName:     last,
		Role:         models.RoleIntern,
	}
	profile := &models.InternProfile{
		Department: department,
		Status:     constants.DefaultInternStatus,
		Progress:   0,
	}

	if err := s.internRepo.CreateWithUser(user, profile); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		logging.Logger.WithError(err).WithField("email", email).Error("intern creation rolled back")
		return nil, ErrFailedToCreateIntern
	}

	logging.Logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"created_by": principal.ID,
	}).Info("intern created")

	return profile, nil
}

// ListInterns returns every intern profile, windowed when pagination is enabled.
func (s *InternService) ListInterns(principal policy.Principal, pagination utils.PaginationParams) ([]models.InternProfile, int64, error) {
	if !policy.CanListInterns(principal) {
		return nil, 0, ErrForbidden
	}

	profiles, total, err := s.internRepo.List(repository.InternFilter{Pagination: pagination})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list interns: %w", err)
	}
	return profiles, total, nil
}

// GetIntern returns one intern profile by account id
func (s *InternService) GetIntern(principal policy.Principal, userID uint64) (*models.InternProfile, error) {
	if !policy.CanViewIntern(principal, userID) {
		return nil, ErrForbidden
	}

	profile, err := s.internRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInternNotFound
		}
		return nil, fmt.Errorf("failed to find intern: %w", err)
	}
	return profile, nil
}

// ListInternsWithTasks returns profiles with their tasks. Admins see every
// intern; anyone else sees only their own profile.
func (s *InternService) ListInternsWithTasks(principal policy.Principal, pagination utils.PaginationParams) ([]InternWithTasks, int64, error) {
	filter := repository.InternFilter{Pagination: pagination}
	if !policy.CanListInterns(principal) {
		self := principal.ID
		filter.UserID = &self
	}

	profiles, total, err := s.internRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list interns: %w", err)
	}
	if len(profiles) == 0 {
		return []InternWithTasks{}, total, nil
	}

	ids := make([]uint64, len(profiles))
	for i, p := range profiles {
		ids[i] = p.UserID
	}
	tasks, err := s.taskRepo.ListByAssignees(ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load intern tasks: %w", err)
	}

	byAssignee := make(map[uint64][]models.Task, len(profiles))
	for _, task := range tasks {
		byAssignee[task.AssignedToID] = append(byAssignee[task.AssignedToID], task)
	}

	result := make([]InternWithTasks, len(profiles))
	for i, p := range profiles {
		result[i] = InternWithTasks{Profile: p, Tasks: byAssignee[p.UserID]}
	}
	return result, total, nil
}
