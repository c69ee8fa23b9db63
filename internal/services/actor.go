package services

import "github.com/yukikurage/ems-api/internal/models"

// Actor is the authenticated identity performing an operation, as resolved
// from the bearer token.
type Actor struct {
	ID   string
	Role models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanAccessTask reports whether the actor may read or update the task
func (a Actor) CanAccessTask(task *models.Task) bool {
	return a.IsAdmin() || task.AssignedTo == a.ID
}
