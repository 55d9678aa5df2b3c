package dto

import (
	"time"

	"github.com/noah-isme/marktrack-api/internal/models"
)

// SubjectCreateRequest describes a new subject and its thresholds.
type SubjectCreateRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Code      string `json:"code" validate:"required,min=2,max=20,alphanum"`
	MaxMarks  int    `json:"max_marks" validate:"required,min=1,max=1000"`
	PassMarks int    `json:"pass_marks" validate:"min=0,ltefield=MaxMarks"`
	TeacherID *uint  `json:"teacher_id"`
}

// SubjectUpdateRequest captures partial updates to a subject.
type SubjectUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=100"`
	MaxMarks  *int    `json:"max_marks" validate:"omitempty,min=1,max=1000"`
	PassMarks *int    `json:"pass_marks" validate:"omitempty,min=0"`
	TeacherID *uint   `json:"teacher_id"`
}

// SubjectResponse is the serialized representation of a subject.
type SubjectResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	MaxMarks  int       `json:"max_marks"`
	PassMarks int       `json:"pass_marks"`
	TeacherID *uint     `json:"teacher_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubjectResponse converts a subject model into a DTO.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:        subject.ID,
		Name:      subject.Name,
		Code:      subject.Code,
		MaxMarks:  subject.MaxMarks,
		PassMarks: subject.PassMarks,
		TeacherID: subject.TeacherID,
		CreatedAt: subject.CreatedAt,
		UpdatedAt: subject.UpdatedAt,
	}
}

// NewSubjectResponseSlice converts a slice of subjects into DTOs.
func NewSubjectResponseSlice(subjects []models.Subject) []SubjectResponse {
	out := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, NewSubjectResponse(subject))
	}
	return out
}
