package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ems-api/internal/dto"
	apierrors "github.com/yukikurage/ems-api/internal/errors"
	"github.com/yukikurage/ems-api/internal/middleware"
	"github.com/yukikurage/ems-api/internal/services"
)

type DepartmentHandler struct {
	departmentService *services.DepartmentService
}

func NewDepartmentHandler(departmentService *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateDepartmentRequest struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dept, err := h.departmentService.Create(c.Request.Context(), actor, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDepartmentDTO(*dept))
}

func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	depts, err := h.departmentService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"departments": dto.ToDepartmentDTOs(depts)})
}
