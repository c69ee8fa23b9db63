package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/ems-api/internal/models"
	"github.com/yukikurage/ems-api/internal/repository"
)

type DepartmentService struct {
	repo repository.DepartmentRepository
}

func NewDepartmentService(repo repository.DepartmentRepository) *DepartmentService {
	return &DepartmentService{repo: repo}
}

// Create adds a department. Names are unique.
func (s *DepartmentService) Create(ctx context.Context, actor Actor, name, description string) (*models.Department, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, missingField("name")
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, ErrDepartmentExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check department: %w", err)
	}

	dept := &models.Department{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.repo.Create(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDepartmentExists
		}
		return nil, fmt.Errorf("failed to create department: %w", err)
	}
	return dept, nil
}

func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	depts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return depts, nil
}
