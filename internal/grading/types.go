// Package grading turns raw mark records into subject evaluations, student
// report cards, class statistics and failure notices.
//
// Every function in this package is a pure transformation over the snapshot
// passed in by the caller. Nothing here performs I/O, logs, or keeps state
// between calls.
package grading

import "time"

// Status is the pass/fail outcome of a subject or a whole report.
type Status string

const (
	StatusPass Status = "Pass"
	StatusFail Status = "Fail"
)

// Grade is a letter grade produced by Classify.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// MarkRecord is one mark entered by a teacher for a student, subject and exam type.
type MarkRecord struct {
	StudentID     uint
	SubjectID     uint
	MarksObtained int
	ExamType      string
	EnteredBy     uint
}

// Subject carries the thresholds a mark is evaluated against.
type Subject struct {
	ID        uint
	Name      string
	Code      string
	MaxMarks  int
	PassMarks int
}

// Student is the identity and parent contact used on reports and notices.
type Student struct {
	ID          uint
	Name        string
	RollNo      string
	ClassName   string
	Section     string
	ParentName  string
	ParentEmail string
}

// SubjectEvaluation is the outcome for one student in one subject.
type SubjectEvaluation struct {
	SubjectID     uint   `json:"subject_id"`
	SubjectName   string `json:"subject_name"`
	SubjectCode   string `json:"subject_code"`
	MarksObtained int    `json:"marks_obtained"`
	MaxMarks      int    `json:"max_marks"`
	PassMarks     int    `json:"pass_marks"`
	Status        Status `json:"status"`
	Grade         Grade  `json:"grade"`
}

// StudentReport is the report card of one student for one exam type.
type StudentReport struct {
	StudentID     uint                `json:"student_id"`
	StudentName   string              `json:"student_name"`
	RollNo        string              `json:"roll_no"`
	ClassName     string              `json:"class_name"`
	Section       string              `json:"section"`
	ExamType      string              `json:"exam_type"`
	Subjects      []SubjectEvaluation `json:"subjects"`
	TotalMarks    int                 `json:"total_marks"`
	TotalMaxMarks int                 `json:"total_max_marks"`
	Percentage    float64             `json:"percentage"`
	OverallGrade  Grade               `json:"overall_grade"`
	Result        Status              `json:"result"`
	GeneratedAt   time.Time           `json:"generated_at"`

	// exact holds the unrounded percentage used for grading and ranking.
	exact float64
}

// SubjectStats summarises one subject across a class.
type SubjectStats struct {
	Subject     string  `json:"subject"`
	SubjectCode string  `json:"subject_code"`
	Average     float64 `json:"average"`
	MaxMarks    int     `json:"max_marks"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	PassRate    float64 `json:"pass_rate"`
}

// TopPerformer is one entry of a class ranking.
type TopPerformer struct {
	StudentID  uint    `json:"student_id"`
	Name       string  `json:"name"`
	RollNo     string  `json:"roll_no"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Grade      Grade   `json:"grade"`
}

// ClassReport aggregates the reports of a class section for one exam type.
type ClassReport struct {
	ClassName        string         `json:"class_name"`
	Section          string         `json:"section"`
	ExamType         string         `json:"exam_type"`
	TotalStudents    int            `json:"total_students"`
	PassedStudents   int            `json:"passed_students"`
	FailedStudents   int            `json:"failed_students"`
	PassPercentage   float64        `json:"pass_percentage"`
	SubjectWiseStats []SubjectStats `json:"subject_wise_stats"`
	TopPerformers    []TopPerformer `json:"top_performers"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

// FailureNotice proposes a parent notification for one failing subject.
// EmailSent is owned by the mail collaborator and is always false here.
type FailureNotice struct {
	StudentID     uint    `json:"student_id"`
	StudentName   string  `json:"student_name"`
	RollNo        string  `json:"roll_no"`
	ClassName     string  `json:"class_name"`
	Section       string  `json:"section"`
	SubjectID     uint    `json:"subject_id"`
	SubjectName   string  `json:"subject_name"`
	ExamType      string  `json:"exam_type"`
	MarksObtained int     `json:"marks_obtained"`
	MaxMarks      int     `json:"max_marks"`
	PassMarks     int     `json:"pass_marks"`
	ParentName    string  `json:"parent_name,omitempty"`
	ParentEmail   *string `json:"parent_email"`
	EmailSent     bool    `json:"email_sent"`
}

// FailureFilter narrows DetectFailures. A nil field places no constraint.
type FailureFilter struct {
	ClassName *string
	SubjectID *uint
	ExamType  *string
}
