package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/ems-api/internal/constants"
	"github.com/yukikurage/ems-api/internal/events"
	"github.com/yukikurage/ems-api/internal/models"
	"github.com/yukikurage/ems-api/internal/repository"
	"github.com/yukikurage/ems-api/internal/utils"
)

// TaskDrafter turns free text into task drafts. AIService implements it.
type TaskDrafter interface {
	GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error)
}

// TaskService owns the task status state machine
type TaskService struct {
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	publisher events.Publisher
	drafter   TaskDrafter
	now       func() time.Time
}

// NewTaskService creates a new TaskService. drafter may be nil, in which case
// GenerateTasks reports ErrAIServiceNotConfigured.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, publisher events.Publisher, drafter TaskDrafter) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		publisher: publisher,
		drafter:   drafter,
		now:       time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Category    string
	DueDate     *time.Time
	AssignedTo  string
}

// UpdateStatusInput represents a status transition request. A nil
// Attachments leaves the stored attachments untouched; Notes always
// overwrites.
type UpdateStatusInput struct {
	Status      string
	Notes       string
	Attachments []string
}

// TaskDetail is a task with its assignee and creator resolved. Either user
// is nil when the account no longer exists.
type TaskDetail struct {
	Task     models.Task
	Assignee *models.User
	Creator  *models.User
}

// TaskPage is one page of tasks plus the users they reference
type TaskPage struct {
	Tasks []models.Task
	Users map[string]models.User
	Total int64
	Page  int
	Limit int
}

// CreateTask creates a pending task assigned to an employee
func (s *TaskService) CreateTask(ctx context.Context, actor Actor, input CreateTaskInput) (*TaskDetail, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	switch {
	case input.Title == "":
		return nil, missingField("title")
	case input.Description == "":
		return nil, missingField("description")
	case input.DueDate == nil || input.DueDate.IsZero():
		return nil, missingField("due_date")
	case input.Category == "":
		return nil, missingField("category")
	case input.AssignedTo == "":
		return nil, missingField("assigned_to")
	}

	assignee, err := s.userRepo.FindByID(ctx, input.AssignedTo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("failed to find assignee: %w", err)
	}
	if assignee.Role != models.RoleEmployee {
		return nil, ErrInvalidAssignee
	}

	task := &models.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		DueDate:     *input.DueDate,
		Status:      models.TaskStatusPending,
		Attachments: []string{},
		AssignedTo:  assignee.ID,
		CreatedBy:   actor.ID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publish(ctx, events.TaskAssigned, actor, task)

	creator, err := s.findUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &TaskDetail{Task: *task, Assignee: assignee, Creator: creator}, nil
}

// UpdateStatus moves a task to a new status. Completed tasks are locked.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID string, actor Actor, input UpdateStatusInput) (*TaskDetail, error) {
	status, ok := models.ParseTaskStatus(input.Status)
	if !ok || status == models.TaskStatusPending {
		return nil, ErrInvalidStatus
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessTask(task) {
		return nil, ErrTaskAccessDenied
	}
	if task.Status == models.TaskStatusCompleted {
		return nil, ErrTaskCompleted
	}

	task.Status = status
	task.Notes = input.Notes
	if input.Attachments != nil {
		task.Attachments = input.Attachments
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.publish(ctx, events.TaskStatusChanged, actor, task)

	return s.detail(ctx, task)
}

// GetTask returns a task the actor may see
func (s *TaskService) GetTask(ctx context.Context, taskID string, actor Actor) (*TaskDetail, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessTask(task) {
		return nil, ErrTaskAccessDenied
	}
	return s.detail(ctx, task)
}

// ListTasks pages through every task for admins and the actor's own tasks
// for employees, newest first.
func (s *TaskService) ListTasks(ctx context.Context, actor Actor, params utils.PaginationParams) (*TaskPage, error) {
	filter := repository.TaskFilter{Page: params.Page, PageSize: params.Limit}
	if !actor.IsAdmin() {
		filter.AssignedTo = &actor.ID
	}
	return s.listPage(ctx, filter)
}

// ListMyTasks pages through the tasks assigned to the actor regardless of role
func (s *TaskService) ListMyTasks(ctx context.Context, actor Actor, params utils.PaginationParams) (*TaskPage, error) {
	return s.listPage(ctx, repository.TaskFilter{
		AssignedTo: &actor.ID,
		Page:       params.Page,
		PageSize:   params.Limit,
	})
}

// ListUpcoming returns tasks due today or later, soonest first
func (s *TaskService) ListUpcoming(ctx context.Context, actor Actor) ([]models.Task, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	filter := repository.TaskFilter{DueDateFrom: &startOfDay, SortByDueDate: true}
	if !actor.IsAdmin() {
		filter.AssignedTo = &actor.ID
	}

	tasks, _, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tasks: %w", err)
	}
	return tasks, nil
}

// ListOverdue returns every task past its due date that is not completed
func (s *TaskService) ListOverdue(ctx context.Context, now time.Time) ([]models.Task, error) {
	tasks, _, err := s.taskRepo.List(ctx, repository.TaskFilter{
		DueDateBefore:   &now,
		ExcludeStatuses: []models.TaskStatus{models.TaskStatusCompleted},
		SortByDueDate:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	return tasks, nil
}

// GenerateTasks drafts tasks from free text. Nothing is persisted; drafts
// without a title are dropped.
func (s *TaskService) GenerateTasks(ctx context.Context, actor Actor, text string) ([]GeneratedTask, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, missingField("text")
	}

	generated, err := s.drafter.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	if len(generated) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	drafts := make([]GeneratedTask, 0, len(generated))
	for _, g := range generated {
		g.Title = strings.TrimSpace(g.Title)
		if g.Title == "" {
			continue
		}
		g.Description = strings.TrimSpace(g.Description)
		g.Category = strings.TrimSpace(g.Category)
		drafts = append(drafts, g)
		if len(drafts) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	if len(drafts) == 0 {
		return nil, ErrAINoValidTasks
	}
	return drafts, nil
}

func (s *TaskService) listPage(ctx context.Context, filter repository.TaskFilter) (*TaskPage, error) {
	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	users, err := s.usersFor(ctx, tasks)
	if err != nil {
		return nil, err
	}

	return &TaskPage{
		Tasks: tasks,
		Users: users,
		Total: total,
		Page:  filter.Page,
		Limit: filter.PageSize,
	}, nil
}

func (s *TaskService) findTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *TaskService) detail(ctx context.Context, task *models.Task) (*TaskDetail, error) {
	users, err := s.usersFor(ctx, []models.Task{*task})
	if err != nil {
		return nil, err
	}

	d := &TaskDetail{Task: *task}
	if u, ok := users[task.AssignedTo]; ok {
		d.Assignee = &u
	}
	if u, ok := users[task.CreatedBy]; ok {
		d.Creator = &u
	}
	return d, nil
}

// usersFor loads the assignees and creators of tasks in one query. Tasks may
// live in a different store than users, so this cannot be a join.
func (s *TaskService) usersFor(ctx context.Context, tasks []models.Task) (map[string]models.User, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(tasks)*2)
	for _, t := range tasks {
		for _, id := range []string{t.AssignedTo, t.CreatedBy} {
			if _, ok := seen[id]; ok || id == "" {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load task users: %w", err)
	}

	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func (s *TaskService) publish(ctx context.Context, kind events.Kind, actor Actor, task *models.Task) {
	if s.publisher == nil {
		return
	}
	snapshot := *task
	s.publisher.Publish(ctx, events.Event{Kind: kind, ActorID: actor.ID, Task: &snapshot})
}
