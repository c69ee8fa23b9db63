package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/ems-api/internal/events"
	"github.com/yukikurage/ems-api/internal/models"
)

const dueDateLayout = "Jan 2, 2006"

// NotificationEmitter turns domain events into notifications. Subscribe
// Handle on the event bus.
type NotificationEmitter struct {
	notifications *NotificationService
}

func NewNotificationEmitter(notifications *NotificationService) *NotificationEmitter {
	return &NotificationEmitter{notifications: notifications}
}

// Handle creates the notification for e, if any
func (e *NotificationEmitter) Handle(ctx context.Context, ev events.Event) error {
	input, ok := notificationFor(ev)
	if !ok {
		return nil
	}
	if _, err := e.notifications.Create(ctx, input); err != nil {
		return fmt.Errorf("notify %s about %s: %w", input.UserID, ev.Kind, err)
	}
	return nil
}

func notificationFor(ev events.Event) (CreateNotificationInput, bool) {
	switch ev.Kind {
	case events.TaskAssigned:
		t := ev.Task
		if t == nil {
			return CreateNotificationInput{}, false
		}
		return CreateNotificationInput{
			UserID:   t.AssignedTo,
			Type:     models.NotificationTaskAssigned,
			Title:    "New task assigned",
			Message:  fmt.Sprintf("You have been assigned %q, due %s", t.Title, t.DueDate.Format(dueDateLayout)),
			Related:  models.TaskRef(t.ID),
			Priority: models.PriorityMedium,
		}, true

	case events.TaskStatusChanged:
		t := ev.Task
		// Nobody is told about their own action
		if t == nil || ev.ActorID == t.CreatedBy {
			return CreateNotificationInput{}, false
		}
		input := CreateNotificationInput{UserID: t.CreatedBy, Related: models.TaskRef(t.ID)}
		switch t.Status {
		case models.TaskStatusInProgress:
			input.Type = models.NotificationTaskAccepted
			input.Title = "Task accepted"
			input.Message = fmt.Sprintf("%q is now in progress", t.Title)
			input.Priority = models.PriorityMedium
		case models.TaskStatusCompleted:
			input.Type = models.NotificationTaskCompleted
			input.Title = "Task completed"
			input.Message = fmt.Sprintf("%q has been completed", t.Title)
			input.Priority = models.PriorityHigh
		case models.TaskStatusDeclined:
			input.Type = models.NotificationTaskDeclined
			input.Title = "Task declined"
			input.Message = fmt.Sprintf("%q was declined", t.Title)
			if t.Notes != "" {
				input.Message += ": " + t.Notes
			}
			input.Priority = models.PriorityHigh
		default:
			return CreateNotificationInput{}, false
		}
		return input, true

	case events.TaskOverdue:
		t := ev.Task
		if t == nil {
			return CreateNotificationInput{}, false
		}
		return CreateNotificationInput{
			UserID:   t.AssignedTo,
			Type:     models.NotificationTaskOverdue,
			Title:    "Task overdue",
			Message:  fmt.Sprintf("%q was due %s", t.Title, t.DueDate.Format(dueDateLayout)),
			Related:  models.TaskRef(t.ID),
			Priority: models.PriorityUrgent,
		}, true

	case events.MemberAdded:
		m := ev.Member
		if m == nil {
			return CreateNotificationInput{}, false
		}
		return CreateNotificationInput{
			UserID:   ev.ActorID,
			Type:     models.NotificationMemberAdded,
			Title:    "Team member added",
			Message:  fmt.Sprintf("%s (%s) joined your team", m.Name, m.Email),
			Related:  models.UserRef(m.ID),
			Priority: models.PriorityLow,
		}, true

	case events.MemberRemoved:
		m := ev.Member
		if m == nil {
			return CreateNotificationInput{}, false
		}
		return CreateNotificationInput{
			UserID:   ev.ActorID,
			Type:     models.NotificationMemberRemoved,
			Title:    "Team member removed",
			Message:  fmt.Sprintf("%s was removed from your team", m.Name),
			Related:  models.UserRef(m.ID),
			Priority: models.PriorityLow,
		}, true
	}

	return CreateNotificationInput{}, false
}
