package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes the read paths depend on that the model tags
// do not declare
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task listing and blocked-task scans
		{"tasks", "idx_tasks_project_position", "project_id, position"},
		{"tasks", "idx_tasks_parent_id", "parent_id"},
		{"tasks", "idx_tasks_status", "status"},

		// Whole-project graph loads and reverse edge lookups
		{"task_dependencies", "idx_task_dependencies_project_id", "project_id"},
		{"task_dependencies", "idx_task_dependencies_depends_on_id", "depends_on_id"},

		// Task assignments indexes
		{"task_assignments", "idx_task_assignments_user_id", "user_id"},

		// Feeds
		{"comments", "idx_comments_task_created", "task_id, created_at"},
		{"activities", "idx_activities_project_created", "project_id, created_at"},
		{"activities", "idx_activities_target", "target_kind, target_id"},

		// Time tracking totals and running-timer lookups
		{"time_entries", "idx_time_entries_task_id", "task_id"},
		{"time_entries", "idx_time_entries_user_end", "user_id, end_time"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index",
			zap.String("index", idx.name),
			zap.String("table", idx.table),
			zap.String("columns", idx.columns),
		)
	}

	return nil
}

// MigrateDatabase runs the post-AutoMigrate steps
func MigrateDatabase(db *gorm.DB, log *zap.Logger) error {
	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
