package models

import "time"

type NotificationType string

const (
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskAccepted  NotificationType = "task_accepted"
	NotificationTaskCompleted NotificationType = "task_completed"
	NotificationTaskDeclined  NotificationType = "task_declined"
	NotificationTaskOverdue   NotificationType = "task_overdue"
	NotificationMemberAdded   NotificationType = "member_added"
	NotificationMemberRemoved NotificationType = "member_removed"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTaskAssigned, NotificationTaskAccepted, NotificationTaskCompleted,
		NotificationTaskDeclined, NotificationTaskOverdue, NotificationMemberAdded,
		NotificationMemberRemoved:
		return true
	}
	return false
}

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

func (p NotificationPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type EntityKind string

const (
	EntityTask EntityKind = "task"
	EntityUser EntityKind = "user"
)

// Reference points at an entity in another store. It is informational only:
// nothing checks that the target exists. An empty Kind means no reference.
type Reference struct {
	Kind EntityKind `gorm:"type:varchar(20)" json:"kind"`
	ID   string     `gorm:"type:varchar(36)" json:"id"`
}

func (r Reference) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

func TaskRef(id string) Reference { return Reference{Kind: EntityTask, ID: id} }

func UserRef(id string) Reference { return Reference{Kind: EntityUser, ID: id} }

type Notification struct {
	ID        string               `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    string               `gorm:"type:varchar(36);not null" json:"user_id"`
	Type      NotificationType     `gorm:"type:varchar(30);not null" json:"type"`
	Title     string               `gorm:"type:varchar(255);not null" json:"title"`
	Message   string               `gorm:"type:text;not null" json:"message"`
	Related   Reference            `gorm:"embedded;embeddedPrefix:related_" json:"related"`
	IsRead    bool                 `gorm:"not null;default:false" json:"is_read"`
	Priority  NotificationPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	CreatedAt time.Time            `json:"created_at"`
}
