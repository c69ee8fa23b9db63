package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/ems-api/internal/constants"
	"github.com/yukikurage/ems-api/internal/models"
	"github.com/yukikurage/ems-api/internal/repository"
)

// NotificationService manages per-user notifications. Every read and
// mutation is scoped to the owner passed in by the caller.
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotificationInput represents input for creating a notification
type CreateNotificationInput struct {
	UserID   string
	Type     models.NotificationType
	Title    string
	Message  string
	Related  models.Reference
	Priority models.NotificationPriority
}

// Create inserts a notification. The related reference is stored as given.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}

	switch {
	case input.UserID == "":
		return nil, missingField("user_id")
	case !input.Type.Valid():
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidNotification, input.Type)
	case !input.Priority.Valid():
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidNotification, input.Priority)
	case strings.TrimSpace(input.Title) == "":
		return nil, missingField("title")
	case strings.TrimSpace(input.Message) == "":
		return nil, missingField("message")
	}

	n := &models.Notification{
		ID:       uuid.NewString(),
		UserID:   input.UserID,
		Type:     input.Type,
		Title:    input.Title,
		Message:  input.Message,
		Related:  input.Related,
		Priority: input.Priority,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit < 1 {
		limit = constants.DefaultNotificationLimit
	}
	if limit > constants.MaxNotificationLimit {
		limit = constants.MaxNotificationLimit
	}

	notifications, err := s.repo.List(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification as read. Marking an already read
// notification succeeds without writing.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	n, err := s.findOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}

	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	n.IsRead = true
	return n, nil
}

// MarkAllRead marks every unread notification of the user and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return updated, nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	deleted, err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if deleted == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// DeleteAllRead removes the user's read notifications and leaves unread ones
func (s *NotificationService) DeleteAllRead(ctx context.Context, userID string) (int64, error) {
	deleted, err := s.repo.DeleteRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear read notifications: %w", err)
	}
	return deleted, nil
}

// HasNotified reports whether the user already got a notification of type t
// about ref.
func (s *NotificationService) HasNotified(ctx context.Context, userID string, t models.NotificationType, ref models.Reference) (bool, error) {
	exists, err := s.repo.ExistsForRelated(ctx, userID, t, ref)
	if err != nil {
		return false, fmt.Errorf("failed to look up notification: %w", err)
	}
	return exists, nil
}

func (s *NotificationService) findOwned(ctx context.Context, id, userID string) (*models.Notification, error) {
	n, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}
	return n, nil
}
