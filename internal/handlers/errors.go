package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/ems-api/internal/errors"
	"github.com/yukikurage/ems-api/internal/services"
)

// respondServiceError maps a service error kind to its HTTP response. Errors
// of no known kind are store failures and are logged, never echoed.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrValidation):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUnavailable):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		apierrors.InternalError(c, "")
	}
}
