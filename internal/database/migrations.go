package database

import (
	"fmt"
	"strings"

	"github.com/internhub/intern-management-api/internal/logging"
	"github.com/internhub/intern-management-api/internal/models"
	"gorm.io/gorm"
)

// taskListIndex names a composite index that backs the task list filters.
type taskListIndex struct {
	name    string
	columns []string
}

// AddIndexes creates the composite indexes AutoMigrate cannot infer from struct tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []taskListIndex{
		{"idx_tasks_assignee_status", []string{"assigned_to_id", "status"}},
		{"idx_tasks_assignee_progress", []string{"assigned_to_id", "progress"}},
		{"idx_tasks_due_date_priority", []string{"due_date", "priority"}},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			logging.Logger.WithField("index", idx.name).Debug("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logging.Logger.WithField("index", idx.name).Info("created index")
	}

	return nil
}
