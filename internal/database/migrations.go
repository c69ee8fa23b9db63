package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/yukikurage/ems-api/internal/models"
	"gorm.io/gorm"
)

type indexSpec struct {
	model   any
	name    string
	columns []string
}

var notificationIndexes = []indexSpec{
	// Every notification query filters on the owner, most on the read flag too
	{&models.Notification{}, "idx_notifications_user_read", []string{"user_id", "is_read"}},
	{&models.Notification{}, "idx_notifications_created_at", []string{"created_at"}},
	{&models.Notification{}, "idx_notifications_related", []string{"related_kind", "related_id"}},
}

var taskIndexes = []indexSpec{
	{&models.Task{}, "idx_tasks_assigned_to", []string{"assigned_to"}},
	{&models.Task{}, "idx_tasks_status", []string{"status"}},
	{&models.Task{}, "idx_tasks_due_date", []string{"due_date"}},
	{&models.Task{}, "idx_tasks_created_at", []string{"created_at"}},
}

// AddIndexes adds the query indexes that the gorm tags do not declare
func AddIndexes(db *gorm.DB, includeTasks bool) error {
	indexes := notificationIndexes
	if includeTasks {
		indexes = append(append([]indexSpec{}, indexes...), taskIndexes...)
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s", idx.name, stmt.Schema.Table)
	}

	return nil
}

