package middleware

import (
	"context"
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ems-api/internal/constants"
	apierrors "github.com/yukikurage/ems-api/internal/errors"
	"github.com/yukikurage/ems-api/internal/services"
)

// TaskLoader loads a task on behalf of an actor
type TaskLoader interface {
	GetTask(ctx context.Context, taskID string, actor services.Actor) (*services.TaskDetail, error)
}

// RequireTaskAccess loads the task named by the :id parameter and stores it
// in context. Employees may only reach tasks assigned to them.
func RequireTaskAccess(tasks TaskLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		detail, err := tasks.GetTask(c.Request.Context(), c.Param("id"), actor)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNotFound):
				apierrors.NotFound(c, "Task not found")
			case errors.Is(err, services.ErrForbidden):
				apierrors.Forbidden(c, err.Error())
			default:
				log.Printf("failed to load task %s: %v", c.Param("id"), err)
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, detail)
		c.Next()
	}
}

// GetTask retrieves the task stored by RequireTaskAccess
func GetTask(c *gin.Context) (*services.TaskDetail, bool) {
	v, ok := c.Get(constants.ContextKeyTask)
	if !ok {
		return nil, false
	}
	detail, ok := v.(*services.TaskDetail)
	return detail, ok
}
