package repository

import (
	"errors"
	"fmt"

	"github.com/internhub/intern-management-api/internal/database"
	"github.com/internhub/intern-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateUser is returned when creating the account fails inside the intern creation transaction.
	ErrCreateUser = errors.New("intern repository: create user failed")
	// ErrCreateInternProfile is returned when creating the profile fails inside the intern creation transaction.
	ErrCreateInternProfile = errors.New("intern repository: create intern profile failed")
)

// GormInternRepository is a GORM implementation of InternRepository
type GormInternRepository struct {
	db *gorm.DB
}

// NewInternRepository creates a new InternRepository
func NewInternRepository(db *gorm.DB) InternRepository {
	return &GormInternRepository{db: db}
}

// CreateWithUser creates the account and the profile atomically.
// The original database error stays in the chain so callers can detect duplicates.
func (r *GormInternRepository) CreateWithUser(user *models.User, profile *models.InternProfile) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateUser, err)
		}

		profile.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(profile).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateInternProfile, err)
		}

		profile.User = *user
		return nil
	})
}

// FindByUserID finds the profile of an INTERN account
func (r *GormInternRepository) FindByUserID(userID uint64) (*models.InternProfile, error) {
	var profile models.InternProfile
	if err := r.internQuery().
		Where("intern_profiles.user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// List retrieves intern profiles ordered by account id
func (r *GormInternRepository) List(filter InternFilter) ([]models.InternProfile, int64, error) {
	query := r.internQuery()
	if filter.UserID != nil {
		query = query.Where("intern_profiles.user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Model(&models.InternProfile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("users.id ASC").Scopes(database.Paginate(filter.Pagination))

	var profiles []models.InternProfile
	if err := listQuery.Preload("User").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *GormInternRepository) internQuery() *gorm.DB {
	return r.db.Model(&models.InternProfile{}).
		Joins("JOIN users ON users.id = intern_profiles.user_id").
		Where("users.role = ?", models.RoleIntern).
		Preload("User")
}
