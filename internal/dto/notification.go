package dto

import (
	"time"

	"github.com/yukikurage/ems-api/internal/models"
)

// ReferenceDTO points at the entity a notification is about
type ReferenceDTO struct {
	Kind models.EntityKind `json:"kind"`
	ID   string            `json:"id"`
}

// NotificationDTO represents a notification in API responses
type NotificationDTO struct {
	ID        string                      `json:"id"`
	Type      models.NotificationType     `json:"type"`
	Title     string                      `json:"title"`
	Message   string                      `json:"message"`
	Related   *ReferenceDTO               `json:"related,omitempty"`
	IsRead    bool                        `json:"is_read"`
	Priority  models.NotificationPriority `json:"priority"`
	CreatedAt time.Time                   `json:"created_at"`
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		Priority:  n.Priority,
		CreatedAt: n.CreatedAt,
	}
	if !n.Related.IsZero() {
		dto.Related = &ReferenceDTO{Kind: n.Related.Kind, ID: n.Related.ID}
	}
	return dto
}

func ToNotificationDTOs(ns []models.Notification) []NotificationDTO {
	out := make([]NotificationDTO, len(ns))
	for i, n := range ns {
		out[i] = ToNotificationDTO(n)
	}
	return out
}
