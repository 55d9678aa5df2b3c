package dto

import (
	"time"

	"github.com/noah-isme/marktrack-api/internal/models"
)

// StudentCreateRequest enrols a student in a class section.
type StudentCreateRequest struct {
	UserID      *uint  `json:"user_id"`
	Name        string `json:"name" validate:"required,min=2,max=255"`
	RollNo      string `json:"roll_no" validate:"required,max=50"`
	ClassName   string `json:"class_name" validate:"required,max=50"`
	Section     string `json:"section" validate:"omitempty,max=10"`
	ParentName  string `json:"parent_name" validate:"omitempty,max=255"`
	ParentEmail string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone string `json:"parent_phone" validate:"omitempty,max=20"`
}

// StudentUpdateRequest captures partial updates to a student. Empty parent
// contact strings clear the stored value.
type StudentUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	RollNo      *string `json:"roll_no" validate:"omitempty,min=1,max=50"`
	ClassName   *string `json:"class_name" validate:"omitempty,min=1,max=50"`
	Section     *string `json:"section" validate:"omitempty,max=10"`
	ParentName  *string `json:"parent_name" validate:"omitempty,max=255"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,max=255"`
	ParentPhone *string `json:"parent_phone" validate:"omitempty,max=20"`
}

// StudentListRequest defines filters for listing students.
type StudentListRequest struct {
	ClassName string `query:"class_name" validate:"omitempty,max=50"`
	Section   string `query:"section" validate:"omitempty,max=10"`
	Search    string `query:"search" validate:"omitempty,max=100"`
	Page      int    `query:"page" validate:"omitempty,min=1"`
	PageSize  int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// StudentResponse is the serialized representation of a student.
type StudentResponse struct {
	ID          uint      `json:"id"`
	UserID      *uint     `json:"user_id,omitempty"`
	Name        string    `json:"name"`
	RollNo      string    `json:"roll_no"`
	ClassName   string    `json:"class_name"`
	Section     string    `json:"section"`
	ParentName  string    `json:"parent_name,omitempty"`
	ParentEmail string    `json:"parent_email,omitempty"`
	ParentPhone string    `json:"parent_phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StudentListResponse wraps a page of students.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:          student.ID,
		UserID:      student.UserID,
		Name:        student.Name,
		RollNo:      student.RollNo,
		ClassName:   student.ClassName,
		Section:     student.Section,
		ParentName:  student.ParentName,
		ParentEmail: student.ParentEmail,
		ParentPhone: student.ParentPhone,
		CreatedAt:   student.CreatedAt,
	}
}
