package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/yukikurage/ems-api/internal/constants"
	"github.com/yukikurage/ems-api/internal/events"
	"github.com/yukikurage/ems-api/internal/models"
	"github.com/yukikurage/ems-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

// AuthService handles authentication and team membership.
type AuthService struct {
	userRepo  repository.UserRepository
	deptRepo  repository.DepartmentRepository
	tokens    *TokenManager
	publisher events.Publisher
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, deptRepo repository.DepartmentRepository, tokens *TokenManager, publisher events.Publisher) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		deptRepo:  deptRepo,
		tokens:    tokens,
		publisher: publisher,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput represents the information an admin supplies for a new account.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         models.UserRole
	TeamLeadID   *string
	DepartmentID *string
}

// Login verifies credentials and returns the user with a signed token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Register creates an account on behalf of an admin, who becomes its creator.
func (s *AuthService) Register(ctx context.Context, actor Actor, input RegisterInput) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if input.Role == "" {
		input.Role = models.RoleEmployee
	}
	switch {
	case name == "":
		return nil, missingField("name")
	case email == "":
		return nil, missingField("email")
	case !validEmail(email):
		return nil, newError(ErrValidation, "email is invalid")
	case len(input.Password) < constants.MinPasswordLength:
		return nil, ErrPasswordTooShort
	case !input.Role.Valid():
		return nil, ErrInvalidRole
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if id := input.DepartmentID; id != nil && *id != "" {
		if _, err := s.deptRepo.FindByID(ctx, *id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, fmt.Errorf("failed to find department: %w", err)
		}
	} else {
		input.DepartmentID = nil
	}
	if id := input.TeamLeadID; id != nil && *id == "" {
		input.TeamLeadID = nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	creatorID := actor.ID
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
		CreatedBy:    &creatorID,
		TeamLeadID:   input.TeamLeadID,
		DepartmentID: input.DepartmentID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.publish(ctx, events.MemberAdded, actor, user)

	return user, nil
}

// EnsureAdmin creates a bootstrap admin account unless the email is already
// registered. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	switch {
	case strings.TrimSpace(name) == "":
		return false, missingField("name")
	case !validEmail(email):
		return false, newError(ErrValidation, "email is invalid")
	case len(password) < constants.MinPasswordLength:
		return false, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}

// ChangePasswordInput holds the new password, typed twice.
type ChangePasswordInput struct {
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword replaces the actor's own password.
func (s *AuthService) ChangePassword(ctx context.Context, actor Actor, input ChangePasswordInput) error {
	switch {
	case input.NewPassword == "":
		return missingField("new_password")
	case input.ConfirmPassword == "":
		return missingField("confirm_password")
	case input.NewPassword != input.ConfirmPassword:
		return ErrPasswordMismatch
	case len(input.NewPassword) < constants.MinPasswordLength:
		return ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, actor.ID, string(hashedPassword)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// DeleteAccount removes the actor's own account. Tokens already issued stay
// signed but no longer resolve to a user.
func (s *AuthService) DeleteAccount(ctx context.Context, actor Actor) error {
	if err := s.userRepo.Delete(ctx, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListMembers returns the employees the admin registered.
func (s *AuthService) ListMembers(ctx context.Context, actor Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	members, err := s.userRepo.ListByCreator(ctx, actor.ID, models.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RemoveMember deletes an account the admin registered. Tasks assigned to
// the member are left in place.
func (s *AuthService) RemoveMember(ctx context.Context, actor Actor, memberID string) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	if memberID == actor.ID {
		return ErrCannotRemoveYourself
	}

	member, err := s.userRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}
	if member.CreatedBy == nil || *member.CreatedBy != actor.ID {
		return ErrMemberNotFound
	}

	if err := s.userRepo.Delete(ctx, member.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}

	s.publish(ctx, events.MemberRemoved, actor, member)

	return nil
}

func (s *AuthService) publish(ctx context.Context, kind events.Kind, actor Actor, member *models.User) {
	if s.publisher == nil {
		return
	}
	snapshot := *member
	s.publisher.Publish(ctx, events.Event{Kind: kind, ActorID: actor.ID, Member: &snapshot})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
