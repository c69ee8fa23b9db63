package repository

import (
	"context"

	"github.com/yukikurage/ems-api/internal/models"
	"gorm.io/gorm"
)

// GormDepartmentRepository is a GORM implementation of DepartmentRepository
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new DepartmentRepository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

func (r *GormDepartmentRepository) Create(ctx context.Context, dept *models.Department) error {
	return translate(r.db.WithContext(ctx).Create(dept).Error)
}

func (r *GormDepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	var dept models.Department
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dept).Error; err != nil {
		return nil, translate(err)
	}
	return &dept, nil
}

func (r *GormDepartmentRepository) FindByName(ctx context.Context, name string) (*models.Department, error) {
	var dept models.Department
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&dept).Error; err != nil {
		return nil, translate(err)
	}
	return &dept, nil
}

func (r *GormDepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	depts := []models.Department{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}
