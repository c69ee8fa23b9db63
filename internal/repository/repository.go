package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/ems-api/internal/models"
)

// ErrNotFound is returned by every repository implementation when no record
// matches, regardless of the backing store.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
// The relational store only reports it when opened with TranslateError.
var ErrDuplicate = errors.New("duplicate key")

// TaskRepository defines the interface for task data access. Implementations
// exist for the relational store and for MongoDB.
type TaskRepository interface {
	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update overwrites a task. Concurrent updates are last-write-wins.
	Update(ctx context.Context, task *models.Task) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	AssignedTo      *string
	DueDateFrom     *time.Time
	DueDateBefore   *time.Time
	ExcludeStatuses []models.TaskStatus
	SortByDueDate   bool
	Page            int
	PageSize        int
}

// UserRepository defines the interface for identity store access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByIDs returns the users that exist among ids
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// ListByCreator lists the users with role created by an admin
	ListByCreator(ctx context.Context, creatorID string, role models.UserRole) ([]models.User, error)

	// Delete removes a user
	Delete(ctx context.Context, id string) error
}

// DepartmentRepository defines the interface for department access
type DepartmentRepository interface {
	Create(ctx context.Context, dept *models.Department) error
	FindByID(ctx context.Context, id string) (*models.Department, error)
	FindByName(ctx context.Context, name string) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
}

// NotificationRepository defines the interface for notification access.
// Every method except Create is scoped by the owning user's id.
type NotificationRepository interface {
	// Create inserts a notification
	Create(ctx context.Context, n *models.Notification) error

	// List returns the user's notifications, newest first
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error)

	// CountUnread counts the user's unread notifications
	CountUnread(ctx context.Context, userID string) (int64, error)

	// FindForUser finds a notification owned by userID
	FindForUser(ctx context.Context, id, userID string) (*models.Notification, error)

	// MarkRead sets is_read on one notification owned by userID
	MarkRead(ctx context.Context, id, userID string) error

	// MarkAllRead sets is_read on all of the user's unread notifications
	MarkAllRead(ctx context.Context, userID string) (int64, error)

	// Delete hard-deletes one notification owned by userID
	Delete(ctx context.Context, id, userID string) (int64, error)

	// DeleteRead hard-deletes all of the user's read notifications
	DeleteRead(ctx context.Context, userID string) (int64, error)

	// ExistsForRelated reports whether the user already has a notification
	// of type t about ref
	ExistsForRelated(ctx context.Context, userID string, t models.NotificationType, ref models.Reference) (bool, error)
}
