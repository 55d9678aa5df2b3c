package dto

import (
	"time"

	"github.com/noah-isme/marktrack-api/internal/grading"
	"github.com/noah-isme/marktrack-api/internal/models"
)

// MarkCreateRequest records one mark for a student.
type MarkCreateRequest struct {
	StudentID     uint   `json:"student_id" validate:"required"`
	SubjectID     uint   `json:"subject_id" validate:"required"`
	MarksObtained *int   `json:"marks_obtained" validate:"required,min=0"`
	ExamType      string `json:"exam_type" validate:"omitempty,max=50"`
	Remarks       string `json:"remarks" validate:"omitempty,max=255"`
}

// MarkBulkRequest records marks for many students in one subject and exam.
type MarkBulkRequest struct {
	SubjectID uint              `json:"subject_id" validate:"required"`
	ExamType  string            `json:"exam_type" validate:"omitempty,max=50"`
	Rows      []grading.BulkRow `json:"marks" validate:"required,min=1,max=500"`
}

// MarkUpdateRequest captures corrections to an existing mark.
type MarkUpdateRequest struct {
	MarksObtained *int    `json:"marks_obtained" validate:"omitempty,min=0"`
	Remarks       *string `json:"remarks" validate:"omitempty,max=255"`
}

// MarkListRequest defines filters for listing marks.
type MarkListRequest struct {
	StudentID uint   `query:"student_id"`
	SubjectID uint   `query:"subject_id"`
	ExamType  string `query:"exam_type" validate:"omitempty,max=50"`
	ClassName string `query:"class_name" validate:"omitempty,max=50"`
	Section   string `query:"section" validate:"omitempty,max=10"`
	Page      int    `query:"page" validate:"omitempty,min=1"`
	PageSize  int    `query:"page_size" validate:"omitempty,min=1,max=200"`
}

// FailedMarksRequest narrows the failed-student listing.
type FailedMarksRequest struct {
	ClassName string `query:"class_name" validate:"omitempty,max=50"`
	SubjectID uint   `query:"subject_id"`
	ExamType  string `query:"exam_type" validate:"omitempty,max=50"`
}

// MarkResponse is a stored mark together with its derived outcome.
type MarkResponse struct {
	ID            uint           `json:"id"`
	StudentID     uint           `json:"student_id"`
	SubjectID     uint           `json:"subject_id"`
	SubjectName   string         `json:"subject_name"`
	SubjectCode   string         `json:"subject_code"`
	ExamType      string         `json:"exam_type"`
	MarksObtained int            `json:"marks_obtained"`
	MaxMarks      int            `json:"max_marks"`
	PassMarks     int            `json:"pass_marks"`
	Status        grading.Status `json:"status"`
	Grade         grading.Grade  `json:"grade"`
	Remarks       string         `json:"remarks,omitempty"`
	EnteredBy     uint           `json:"entered_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// MarkListResponse wraps a page of marks.
type MarkListResponse struct {
	Items      []MarkResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewMarkResponse combines a stored mark with its evaluation.
func NewMarkResponse(mark models.Mark, evaluation grading.SubjectEvaluation) MarkResponse {
	return MarkResponse{
		ID:            mark.ID,
		StudentID:     mark.StudentID,
		SubjectID:     mark.SubjectID,
		SubjectName:   evaluation.SubjectName,
		SubjectCode:   evaluation.SubjectCode,
		ExamType:      mark.ExamType,
		MarksObtained: mark.MarksObtained,
		MaxMarks:      evaluation.MaxMarks,
		PassMarks:     evaluation.PassMarks,
		Status:        evaluation.Status,
		Grade:         evaluation.Grade,
		Remarks:       mark.Remarks,
		EnteredBy:     mark.EnteredBy,
		CreatedAt:     mark.CreatedAt,
		UpdatedAt:     mark.UpdatedAt,
	}
}
