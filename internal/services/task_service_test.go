package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/ems-api/internal/models"
	"github.com/yukikurage/ems-api/internal/utils"
)

type TaskServiceTestSuite struct {
	serviceSuite
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

func (s *TaskServiceTestSuite) TestCreateTask_AssignsPendingAndNotifiesAssignee() {
	due := s.now.Add(48 * time.Hour)
	detail, err := s.tasks.CreateTask(s.ctx, actorOf(s.admin), CreateTaskInput{
		Title:       "Write report",
		Description: "Quarterly numbers",
		Category:    "finance",
		DueDate:     &due,
		AssignedTo:  s.employee.ID,
	})
	s.Require().NoError(err)

	s.Equal(models.TaskStatusPending, detail.Task.Status)
	s.Equal(s.admin.ID, detail.Task.CreatedBy)
	s.Require().NotNil(detail.Assignee)
	s.Equal(s.employee.Email, detail.Assignee.Email)
	s.Require().NotNil(detail.Creator)
	s.Equal(s.admin.ID, detail.Creator.ID)

	assigned := s.notificationsOfType(s.employee, models.NotificationTaskAssigned)
	s.Require().Len(assigned, 1)
	s.Equal(models.PriorityMedium, assigned[0].Priority)
	s.Equal(models.TaskRef(detail.Task.ID), assigned[0].Related)
	s.False(assigned[0].IsRead)
}

func (s *TaskServiceTestSuite) TestCreateTask_Validation() {
	due := s.now.Add(time.Hour)
	valid := CreateTaskInput{
		Title:       "t",
		Description: "d",
		Category:    "c",
		DueDate:     &due,
		AssignedTo:  s.employee.ID,
	}

	cases := map[string]func(in *CreateTaskInput){
		"missing title":       func(in *CreateTaskInput) { in.Title = "  " },
		"missing description": func(in *CreateTaskInput) { in.Description = "" },
		"missing due date":    func(in *CreateTaskInput) { in.DueDate = nil },
		"missing category":    func(in *CreateTaskInput) { in.Category = "" },
		"missing assignee":    func(in *CreateTaskInput) { in.AssignedTo = "" },
		"unknown assignee":    func(in *CreateTaskInput) { in.AssignedTo = "no-such-user" },
		"admin assignee":      func(in *CreateTaskInput) { in.AssignedTo = s.admin.ID },
	}
	for name, mutate := range cases {
		s.Run(name, func() {
			in := valid
			mutate(&in)
			_, err := s.tasks.CreateTask(s.ctx, actorOf(s.admin), in)
			s.ErrorIs(err, ErrValidation)
		})
	}

	page, err := s.tasks.ListTasks(s.ctx, actorOf(s.admin), utils.NewPaginationParams(1, 10, 10))
	s.Require().NoError(err)
	s.Zero(page.Total)
}

func (s *TaskServiceTestSuite) TestCreateTask_EmployeeForbidden() {
	due := s.now.Add(time.Hour)
	_, err := s.tasks.CreateTask(s.ctx, actorOf(s.employee), CreateTaskInput{
		Title: "t", Description: "d", Category: "c", DueDate: &due, AssignedTo: s.other.ID,
	})
	s.ErrorIs(err, ErrForbidden)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_RejectsUnknownStatuses() {
	task := s.createTask("Task", s.employee, s.now.Add(time.Hour))

	for _, status := range []string{"", "pending", "done", "IN_PROGRESS"} {
		_, err := s.tasks.UpdateStatus(s.ctx, task.ID, actorOf(s.employee), UpdateStatusInput{Status: status})
		s.ErrorIs(err, ErrValidation, "status %q", status)
	}

	stored, err := s.taskRepo.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusPending, stored.Status)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_AcceptsLegacySpelling() {
	task := s.createTask("Task", s.employee, s.now.Add(time.Hour))

	detail, err := s.tasks.UpdateStatus(s.ctx, task.ID, actorOf(s.employee), UpdateStatusInput{Status: "in progress"})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusInProgress, detail.Task.Status)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_CompletedTaskIsLocked() {
	task := s.createTask("Task", s.employee, s.now.Add(time.Hour))

	_, err := s.tasks.UpdateStatus(s.ctx, task.ID, actorOf(s.employee), UpdateStatusInput{
		Status:      "completed",
		Notes:       "all done",
		Attachments: []string{"report.pdf"},
	})
	s.Require().NoError(err)

	for _, actor := range []Actor{actorOf(s.employee), actorOf(s.admin)} {
		for _, status := range []string{"in-progress", "declined", "completed"} {
			_, err := s.tasks.UpdateStatus(s.ctx, task.ID, actor, UpdateStatusInput{Status: status, Notes: "changed"})
			s.ErrorIs(err, ErrValidation)
		}
	}

	stored, err := s.taskRepo.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusCompleted, stored.Status)
	s.Equal("all done", stored.Notes)
	s.Equal([]string{"report.pdf"}, stored.Attachments)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_DeclinedIsNotTerminal() {
	task := s.createTask("Task", s.employee, s.now.Add(time.Hour))

	_, err := s.tasks.UpdateStatus(s.ctx, task.ID, actorOf(s.employee), UpdateStatusInput{Status: "declined", Notes: "busy"})
	s.Require().NoError(err)

	detail, err := s.tasks.UpdateStatus(s.ctx, task.ID, actorOf(s.employee), UpdateStatusInput{Status: "in-progress"})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusInProgress, detail.Task.Status)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_NotesAndAttachments() {
	task := s.createTask("Task", s.employee, s.now.Add(time.Hour))
	actor := actorOf(s.employee)

	_, err := s.tasks.UpdateStatus(s.ctx, task.ID, actor, UpdateStatusInput{
		Status:      "in-progress",
		Notes:       "started",
		Attachments: []string{"a.png", "b.png"},
	})
	s.Require().NoError(err)

	// Omitted notes clear the previous ones, omitted attachments are kept
	detail, err := s.tasks.UpdateStatus(s.ctx, task.ID, actor, UpdateStatusInput{Status: "declined"})
	s.Require().NoError(err)
	s.Equal("", detail.Task.Notes)
	s.Equal([]string{"a.png", "b.png"}, detail.Task.Attachments)

	detail, err = s.tasks.UpdateStatus(s.ctx, task.ID, actor, UpdateStatusInput{Status: "in-progress", Attachments: []string{}})
	s.Require().NoError(err)
	s.Empty(detail.Task.Attachments)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_Authorization() {
	task := s.createTask("Task", s.employee, s.now.Add(time.Hour))

	_, err := s.tasks.UpdateStatus(s.ctx, task.ID, actorOf(s.other), UpdateStatusInput{Status: "completed"})
	s.ErrorIs(err, ErrForbidden)

	stored, err := s.taskRepo.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusPending, stored.Status)

	_, err = s.tasks.UpdateStatus(s.ctx, "missing", actorOf(s.admin), UpdateStatusInput{Status: "completed"})
	s.ErrorIs(err, ErrNotFound)

	_, err = s.tasks.UpdateStatus(s.ctx, task.ID, actorOf(s.admin), UpdateStatusInput{Status: "in-progress"})
	s.NoError(err)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_NotifiesCreator() {
	task := s.createTask("Task", s.employee, s.now.Add(time.Hour))
	actor := actorOf(s.employee)

	_, err := s.tasks.UpdateStatus(s.ctx, task.ID, actor, UpdateStatusInput{Status: "in-progress"})
	s.Require().NoError(err)
	_, err = s.tasks.UpdateStatus(s.ctx, task.ID, actor, UpdateStatusInput{Status: "declined", Notes: "blocked on review"})
	s.Require().NoError(err)
	_, err = s.tasks.UpdateStatus(s.ctx, task.ID, actor, UpdateStatusInput{Status: "completed"})
	s.Require().NoError(err)

	accepted := s.notificationsOfType(s.admin, models.NotificationTaskAccepted)
	s.Require().Len(accepted, 1)
	s.Equal(models.PriorityMedium, accepted[0].Priority)

	declined := s.notificationsOfType(s.admin, models.NotificationTaskDeclined)
	s.Require().Len(declined, 1)
	s.Equal(models.PriorityHigh, declined[0].Priority)
	s.Contains(declined[0].Message, "blocked on review")

	completed := s.notificationsOfType(s.admin, models.NotificationTaskCompleted)
	s.Require().Len(completed, 1)
	s.Equal(models.PriorityHigh, completed[0].Priority)
	s.Equal(models.TaskRef(task.ID), completed[0].Related)
}

func (s *TaskServiceTestSuite) TestUpdateStatus_CreatorActingIsNotNotified() {
	task := s.createTask("Task", s.employee, s.now.Add(time.Hour))

	_, err := s.tasks.UpdateStatus(s.ctx, task.ID, actorOf(s.admin), UpdateStatusInput{Status: "completed"})
	s.Require().NoError(err)

	s.Empty(s.notificationsOfType(s.admin, models.NotificationTaskCompleted))
}

func (s *TaskServiceTestSuite) TestGetTask() {
	task := s.createTask("Task", s.employee, s.now.Add(time.Hour))

	detail, err := s.tasks.GetTask(s.ctx, task.ID, actorOf(s.employee))
	s.Require().NoError(err)
	s.Equal(task.ID, detail.Task.ID)
	s.Equal(s.admin.Name, detail.Creator.Name)

	_, err = s.tasks.GetTask(s.ctx, task.ID, actorOf(s.other))
	s.ErrorIs(err, ErrForbidden)

	_, err = s.tasks.GetTask(s.ctx, "missing", actorOf(s.admin))
	s.ErrorIs(err, ErrNotFound)
}

func (s *TaskServiceTestSuite) TestListTasks_ScopesAndPaginates() {
	for i := 0; i < 12; i++ {
		s.createTask("Mine", s.employee, s.now.Add(time.Hour))
	}
	s.createTask("Theirs", s.other, s.now.Add(time.Hour))

	admin, err := s.tasks.ListTasks(s.ctx, actorOf(s.admin), utils.NewPaginationParams(1, 10, 10))
	s.Require().NoError(err)
	s.EqualValues(13, admin.Total)
	s.Len(admin.Tasks, 10)

	first, err := s.tasks.ListTasks(s.ctx, actorOf(s.employee), utils.NewPaginationParams(2, 5, 10))
	s.Require().NoError(err)
	s.EqualValues(12, first.Total)
	s.Len(first.Tasks, 5)
	s.Equal(3, utils.TotalPages(first.Total, first.Limit))
	for _, task := range first.Tasks {
		s.Equal(s.employee.ID, task.AssignedTo)
		s.Contains(first.Users, task.AssignedTo)
		s.Contains(first.Users, task.CreatedBy)
	}

	again, err := s.tasks.ListTasks(s.ctx, actorOf(s.employee), utils.NewPaginationParams(2, 5, 10))
	s.Require().NoError(err)
	s.Equal(taskIDs(first.Tasks), taskIDs(again.Tasks))

	last, err := s.tasks.ListTasks(s.ctx, actorOf(s.employee), utils.NewPaginationParams(3, 5, 10))
	s.Require().NoError(err)
	s.Len(last.Tasks, 2)
}

func (s *TaskServiceTestSuite) TestListTasks_NewestFirst() {
	older := s.createTask("Older", s.employee, s.now.Add(time.Hour))
	s.Require().NoError(s.db.Model(&models.Task{}).Where("id = ?", older.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	newer := s.createTask("Newer", s.employee, s.now.Add(time.Hour))

	page, err := s.tasks.ListTasks(s.ctx, actorOf(s.admin), utils.NewPaginationParams(1, 10, 10))
	s.Require().NoError(err)
	s.Equal([]string{newer.ID, older.ID}, taskIDs(page.Tasks))
}

func (s *TaskServiceTestSuite) TestListMyTasks() {
	s.createTask("Mine", s.employee, s.now.Add(time.Hour))
	s.createTask("Theirs", s.other, s.now.Add(time.Hour))

	mine, err := s.tasks.ListMyTasks(s.ctx, actorOf(s.employee), utils.NewPaginationParams(1, 5, 5))
	s.Require().NoError(err)
	s.EqualValues(1, mine.Total)

	admin, err := s.tasks.ListMyTasks(s.ctx, actorOf(s.admin), utils.NewPaginationParams(1, 5, 5))
	s.Require().NoError(err)
	s.Zero(admin.Total)
}

func (s *TaskServiceTestSuite) TestListUpcoming() {
	startOfDay := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	yesterday := s.createTask("Yesterday", s.employee, startOfDay.Add(-time.Minute))
	nextWeek := s.createTask("Next week", s.employee, startOfDay.Add(7*24*time.Hour))
	today := s.createTask("Today", s.employee, startOfDay)
	theirs := s.createTask("Theirs", s.other, startOfDay.Add(24*time.Hour))

	mine, err := s.tasks.ListUpcoming(s.ctx, actorOf(s.employee))
	s.Require().NoError(err)
	s.Equal([]string{today.ID, nextWeek.ID}, taskIDs(mine))

	all, err := s.tasks.ListUpcoming(s.ctx, actorOf(s.admin))
	s.Require().NoError(err)
	s.Equal([]string{today.ID, theirs.ID, nextWeek.ID}, taskIDs(all))
	s.NotContains(taskIDs(all), yesterday.ID)
}

func (s *TaskServiceTestSuite) TestListOverdue() {
	late := s.createTask("Late", s.employee, s.now.Add(-3*time.Hour))
	declined := s.createTask("Declined late", s.employee, s.now.Add(-2*time.Hour))
	done := s.createTask("Done late", s.employee, s.now.Add(-time.Hour))
	s.createTask("Future", s.employee, s.now.Add(time.Hour))

	_, err := s.tasks.UpdateStatus(s.ctx, done.ID, actorOf(s.employee), UpdateStatusInput{Status: "completed"})
	s.Require().NoError(err)
	_, err = s.tasks.UpdateStatus(s.ctx, declined.ID, actorOf(s.employee), UpdateStatusInput{Status: "declined"})
	s.Require().NoError(err)

	// Declining does not complete a task, so it still counts as overdue
	overdue, err := s.tasks.ListOverdue(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal([]string{late.ID, declined.ID}, taskIDs(overdue))
}

type fakeDrafter struct {
	drafts []GeneratedTask
	err    error
}

func (f fakeDrafter) GenerateTasksFromText(context.Context, string) ([]GeneratedTask, error) {
	return f.drafts, f.err
}

func (s *TaskServiceTestSuite) TestGenerateTasks() {
	_, err := s.tasks.GenerateTasks(s.ctx, actorOf(s.admin), "plan the launch")
	s.ErrorIs(err, ErrUnavailable)

	s.tasks.drafter = fakeDrafter{drafts: []GeneratedTask{
		{Title: " Book venue ", Category: "events"},
		{Title: "   "},
	}}
	drafts, err := s.tasks.GenerateTasks(s.ctx, actorOf(s.admin), "plan the launch")
	s.Require().NoError(err)
	s.Require().Len(drafts, 1)
	s.Equal("Book venue", drafts[0].Title)

	_, err = s.tasks.GenerateTasks(s.ctx, actorOf(s.employee), "plan the launch")
	s.ErrorIs(err, ErrForbidden)

	s.tasks.drafter = fakeDrafter{drafts: []GeneratedTask{{Title: ""}}}
	_, err = s.tasks.GenerateTasks(s.ctx, actorOf(s.admin), "x")
	s.ErrorIs(err, ErrAINoValidTasks)

	s.tasks.drafter = fakeDrafter{err: errors.New("quota exceeded")}
	_, err = s.tasks.GenerateTasks(s.ctx, actorOf(s.admin), "x")
	s.Error(err)
	s.NotErrorIs(err, ErrValidation)

	page, err := s.tasks.ListTasks(s.ctx, actorOf(s.admin), utils.NewPaginationParams(1, 10, 10))
	s.Require().NoError(err)
	s.Zero(page.Total)
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
