package repository

import (
	"context"

	"github.com/yukikurage/ems-api/internal/database"
	"github.com/yukikurage/ems-api/internal/models"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// List returns the user's notifications, newest first
func (r *GormNotificationRepository) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Scopes(database.OwnedBy(userID))
	if unreadOnly {
		query = query.Scopes(database.ReadState(false))
	}

	notifications := []models.Notification{}
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread counts the user's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Scopes(database.OwnedBy(userID), database.ReadState(false)).
		Count(&count).Error
	return count, err
}

// FindForUser finds a notification owned by userID
func (r *GormNotificationRepository) FindForUser(ctx context.Context, id, userID string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID)).
		Where("id = ?", id).
		First(&n).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// MarkRead sets is_read on one notification owned by userID
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Scopes(database.OwnedBy(userID)).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// MarkAllRead sets is_read on all of the user's unread notifications
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Scopes(database.OwnedBy(userID), database.ReadState(false)).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// Delete hard-deletes one notification owned by userID
func (r *GormNotificationRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID)).
		Where("id = ?", id).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// DeleteRead hard-deletes all of the user's read notifications
func (r *GormNotificationRepository) DeleteRead(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID), database.ReadState(true)).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// ExistsForRelated reports whether the user already has a notification of
// type t about ref
func (r *GormNotificationRepository) ExistsForRelated(ctx context.Context, userID string, t models.NotificationType, ref models.Reference) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Scopes(database.OwnedBy(userID)).
		Where("type = ? AND related_kind = ? AND related_id = ?", t, ref.Kind, ref.ID).
		Count(&count).Error
	return count > 0, err
}
