package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/yukikurage/project-hub-api/internal/models"
	"gorm.io/gorm"
)

type compositeIndex struct {
	model   interface{}
	name    string
	columns []string
}

var compositeIndexes = []compositeIndex{
	{&models.Notification{}, "idx_notifications_recipient_read", []string{"recipient_kind", "recipient_id", "is_read"}},
	{&models.Message{}, "idx_messages_sender", []string{"sender_kind", "sender_id"}},
	{&models.Message{}, "idx_messages_receiver", []string{"receiver_kind", "receiver_id", "is_read"}},
	{&models.CalendarEvent{}, "idx_calendar_events_creator", []string{"created_by_kind", "created_by_id"}},
	{&models.TaskUpdate{}, "idx_task_updates_author", []string{"updated_by_kind", "updated_by_id"}},
	{&models.Holiday{}, "idx_holidays_developer_status", []string{"developer_id", "status"}},
}

// AddIndexes adds the composite lookup indexes used by the notification,
// messaging and calendar queries.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
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

