package dto

import (
	"time"

	"github.com/yukikurage/ems-api/internal/models"
	"github.com/yukikurage/ems-api/internal/services"
	"github.com/yukikurage/ems-api/internal/utils"
)

// UserSummaryDTO represents a user embedded in task responses
type UserSummaryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	DueDate     time.Time         `json:"due_date"`
	Status      models.TaskStatus `json:"status"`
	Notes       string            `json:"notes"`
	Attachments []string          `json:"attachments"`
	AssignedTo  string            `json:"assigned_to"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Assignee    *UserSummaryDTO   `json:"assignee,omitempty"`
	Creator     *UserSummaryDTO   `json:"creator,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// UpcomingTaskDTO is the projection returned for upcoming tasks
type UpcomingTaskDTO struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	DueDate time.Time         `json:"due_date"`
	Status  models.TaskStatus `json:"status"`
}

// Conversion functions

func toUserSummary(user *models.User) *UserSummaryDTO {
	if user == nil {
		return nil
	}
	return &UserSummaryDTO{ID: user.ID, Name: user.Name, Email: user.Email}
}

// ToTaskDTO converts a task and its resolved users to TaskDTO
func ToTaskDTO(task models.Task, assignee, creator *models.User) TaskDTO {
	attachments := task.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		DueDate:     task.DueDate,
		Status:      task.Status,
		Notes:       task.Notes,
		Attachments: attachments,
		AssignedTo:  task.AssignedTo,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Assignee:    toUserSummary(assignee),
		Creator:     toUserSummary(creator),
	}
}

// ToTaskDetailDTO converts a TaskDetail to TaskDTO
func ToTaskDetailDTO(detail *services.TaskDetail) TaskDTO {
	return ToTaskDTO(detail.Task, detail.Assignee, detail.Creator)
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(page *services.TaskPage) TaskListResponse {
	tasks := make([]TaskDTO, len(page.Tasks))
	for i, task := range page.Tasks {
		tasks[i] = ToTaskDTO(task, lookup(page.Users, task.AssignedTo), lookup(page.Users, task.CreatedBy))
	}

	return TaskListResponse{
		Tasks:      tasks,
		Page:       page.Page,
		PageSize:   page.Limit,
		TotalCount: page.Total,
		TotalPages: utils.TotalPages(page.Total, page.Limit),
	}
}

// ToUpcomingTaskDTOs converts tasks to the upcoming projection
func ToUpcomingTaskDTOs(tasks []models.Task) []UpcomingTaskDTO {
	out := make([]UpcomingTaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = UpcomingTaskDTO{
			ID:      task.ID,
			Title:   task.Title,
			DueDate: task.DueDate,
			Status:  task.Status,
		}
	}
	return out
}

func lookup(users map[string]models.User, id string) *models.User {
	if u, ok := users[id]; ok {
		return &u
	}
	return nil
}
