package database

import (
	"gorm.io/gorm"

	"github.com/internhub/intern-management-api/internal/utils"
)

// Paginate applies pagination to a GORM query. A disabled window leaves the query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !params.Enabled {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}
