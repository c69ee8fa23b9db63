package dto

import (
	"time"

	"github.com/yukikurage/ems-api/internal/models"
)

// DepartmentDTO represents a department in API responses
type DepartmentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UserDTO represents a user in API responses. The password hash never leaves
// the service.
type UserDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`
	CreatedBy    *string         `json:"created_by,omitempty"`
	TeamLeadID   *string         `json:"team_lead_id,omitempty"`
	DepartmentID *string         `json:"department_id,omitempty"`
	Department   *DepartmentDTO  `json:"department,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

func ToDepartmentDTO(d models.Department) DepartmentDTO {
	return DepartmentDTO{ID: d.ID, Name: d.Name, Description: d.Description}
}

func ToDepartmentDTOs(ds []models.Department) []DepartmentDTO {
	out := make([]DepartmentDTO, len(ds))
	for i, d := range ds {
		out[i] = ToDepartmentDTO(d)
	}
	return out
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		CreatedBy:    user.CreatedBy,
		TeamLeadID:   user.TeamLeadID,
		DepartmentID: user.DepartmentID,
		CreatedAt:    user.CreatedAt,
	}
	// Include department if preloaded
	if user.Department != nil {
		d := ToDepartmentDTO(*user.Department)
		dto.Department = &d
	}
	return dto
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}
