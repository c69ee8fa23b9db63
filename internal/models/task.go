package models

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusDeclined   TaskStatus = "declined"
)

// ParseTaskStatus normalizes a client supplied status. The dashboard still
// sends "in progress" with a space.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")) {
	case TaskStatusPending:
		return TaskStatusPending, true
	case TaskStatusInProgress:
		return TaskStatusInProgress, true
	case TaskStatusCompleted:
		return TaskStatusCompleted, true
	case TaskStatusDeclined:
		return TaskStatusDeclined, true
	}
	return "", false
}

// Task lives in the task store, which may be a document database. It carries
// no gorm relations so both store backends can persist it as-is.
type Task struct {
	ID          string     `gorm:"type:varchar(36);primarykey" bson:"_id" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" bson:"title" json:"title"`
	Description string     `gorm:"type:text" bson:"description" json:"description"`
	Category    string     `gorm:"type:varchar(100)" bson:"category" json:"category"`
	DueDate     time.Time  `gorm:"not null" bson:"due_date" json:"due_date"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'pending'" bson:"status" json:"status"`
	Notes       string     `gorm:"type:text" bson:"notes" json:"notes"`
	Attachments []string   `gorm:"type:text;serializer:json" bson:"attachments,omitempty" json:"attachments"`
	AssignedTo  string     `gorm:"type:varchar(36);not null" bson:"assigned_to" json:"assigned_to"`
	CreatedBy   string     `gorm:"type:varchar(36);not null" bson:"created_by" json:"created_by"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// IsOverdue reports whether the due date has passed without the task being completed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusCompleted && t.DueDate.Before(now)
}
