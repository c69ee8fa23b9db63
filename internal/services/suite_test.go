package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/ems-api/internal/database"
	"github.com/yukikurage/ems-api/internal/events"
	"github.com/yukikurage/ems-api/internal/models"
	"github.com/yukikurage/ems-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// serviceSuite wires every service against one in-memory SQLite database
type serviceSuite struct {
	suite.Suite
	ctx context.Context
	db  *gorm.DB
	now time.Time

	bus           *events.Bus
	taskRepo      repository.TaskRepository
	userRepo      repository.UserRepository
	tokens        *TokenManager
	tasks         *TaskService
	notifications *NotificationService
	auth          *AuthService
	departments   *DepartmentService

	admin    *models.User
	employee *models.User
	other    *models.User
}

func (s *serviceSuite) SetupTest() {
	var err error
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	s.Require().NoError(err)
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(database.Migrate(s.db, true))

	s.taskRepo = repository.NewTaskRepository(s.db)
	s.userRepo = repository.NewUserRepository(s.db)
	deptRepo := repository.NewDepartmentRepository(s.db)

	s.bus = events.NewBus()
	s.notifications = NewNotificationService(repository.NewNotificationRepository(s.db))
	s.bus.Subscribe(NewNotificationEmitter(s.notifications).Handle)

	s.tokens = NewTokenManager("test-secret", time.Hour)
	s.auth = NewAuthService(s.userRepo, deptRepo, s.tokens, s.bus)
	s.departments = NewDepartmentService(deptRepo)
	s.tasks = NewTaskService(s.taskRepo, s.userRepo, s.bus, nil)
	s.tasks.now = func() time.Time { return s.now }

	s.admin = s.createUser("Alice Admin", "alice@example.com", models.RoleAdmin, nil)
	s.employee = s.createUser("Eve Employee", "eve@example.com", models.RoleEmployee, &s.admin.ID)
	s.other = s.createUser("Oscar Other", "oscar@example.com", models.RoleEmployee, &s.admin.ID)
}

func (s *serviceSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *serviceSuite) createUser(name, email string, role models.UserRole, createdBy *string) *models.User {
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
		CreatedBy:    createdBy,
	}
	s.Require().NoError(s.userRepo.Create(s.ctx, user))
	return user
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func (s *serviceSuite) createTask(title string, assignee *models.User, due time.Time) *models.Task {
	detail, err := s.tasks.CreateTask(s.ctx, actorOf(s.admin), CreateTaskInput{
		Title:       title,
		Description: "Description of " + title,
		Category:    "development",
		DueDate:     &due,
		AssignedTo:  assignee.ID,
	})
	s.Require().NoError(err)
	return &detail.Task
}

func (s *serviceSuite) notificationsFor(u *models.User) []models.Notification {
	ns, err := s.notifications.List(s.ctx, u.ID, false, 100)
	s.Require().NoError(err)
	return ns
}

func (s *serviceSuite) notificationsOfType(u *models.User, t models.NotificationType) []models.Notification {
	var out []models.Notification
	for _, n := range s.notificationsFor(u) {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}
