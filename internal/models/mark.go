package models

import "time"

// DefaultExamType is used when a mark is entered without an exam label.
const DefaultExamType = "Final"

// Mark is a single score recorded by a teacher. Pass/fail status is not
// stored; it is derived by the grading engine on every read.
type Mark struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StudentID     uint      `gorm:"not null;uniqueIndex:idx_marks_student_subject_exam" json:"student_id"`
	SubjectID     uint      `gorm:"not null;uniqueIndex:idx_marks_student_subject_exam" json:"subject_id"`
	ExamType      string    `gorm:"size:50;not null;default:Final;uniqueIndex:idx_marks_student_subject_exam" json:"exam_type"`
	MarksObtained int       `gorm:"not null" json:"marks_obtained"`
	Remarks       string    `gorm:"size:255" json:"remarks"`
	EnteredBy     uint      `gorm:"not null" json:"entered_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
