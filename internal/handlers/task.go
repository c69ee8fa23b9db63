package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ems-api/internal/constants"
	"github.com/yukikurage/ems-api/internal/dto"
	apierrors "github.com/yukikurage/ems-api/internal/errors"
	"github.com/yukikurage/ems-api/internal/middleware"
	"github.com/yukikurage/ems-api/internal/services"
	"github.com/yukikurage/ems-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns all tasks for admins and the caller's own tasks for employees
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultPageSize)
	page, err := h.taskService.ListTasks(c.Request.Context(), actor, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page))
}

// ListMyTasks returns the tasks assigned to the caller
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c, constants.DefaultMyTasksLimit)
	page, err := h.taskService.ListMyTasks(c.Request.Context(), actor, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page))
}

// ListUpcoming returns tasks due from today on, soonest first
func (h *TaskHandler) ListUpcoming(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tasks, err := h.taskService.ListUpcoming(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUpcomingTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
// Task is already loaded by the RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	detail, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDetailDTO(detail))
}

// CreateTask creates a new task and assigns it to an employee
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description" binding:"required"`
		Category    string `json:"category" binding:"required,max=100"`
		DueDate     string `json:"due_date" binding:"required"`
		AssignedTo  string `json:"assigned_to" binding:"required"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	parsed, err := parseDueDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, "due_date must be YYYY-MM-DD or RFC 3339")
		return
	}
	dueDate := &parsed

	detail, err := h.taskService.CreateTask(c.Request.Context(), actor, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     dueDate,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDetailDTO(detail))
}

// UpdateTaskStatus moves a task to in-progress, completed or declined
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateStatusRequest struct {
		Status      string   `json:"status"`
		Notes       string   `json:"notes"`
		Attachments []string `json:"attachments"`
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	detail, err := h.taskService.UpdateStatus(c.Request.Context(), c.Param("id"), actor, services.UpdateStatusInput{
		Status:      req.Status,
		Notes:       req.Notes,
		Attachments: req.Attachments,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDetailDTO(detail))
}

// GenerateTasks drafts task suggestions from text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), actor, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": drafts})
}

// parseDueDate accepts a calendar date, read in server local time, or a full
// RFC 3339 timestamp.
func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
