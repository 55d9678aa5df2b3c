package service

import (
	"errors"

	"github.com/noah-isme/marktrack-api/internal/grading"
)

var (
	// ErrInvalidInput indicates marks outside the subject range or malformed thresholds.
	ErrInvalidInput = grading.ErrInvalidInput
	// ErrNotFound indicates a referenced student, subject or mark does not exist.
	ErrNotFound = grading.ErrNotFound
	// ErrReportUnavailable indicates no marks exist yet for the requested exam.
	ErrReportUnavailable = grading.ErrNoDataForExam
	// ErrDuplicateMark indicates a mark already exists for the student, subject and exam.
	ErrDuplicateMark = errors.New("mark already recorded for student, subject and exam")
	// ErrDuplicateSubject indicates the subject name or code is taken.
	ErrDuplicateSubject = errors.New("subject name or code already exists")
	// ErrDuplicateStudent indicates the roll number or user link is taken.
	ErrDuplicateStudent = errors.New("student roll number already exists")
	// ErrSubjectInUse indicates marks still reference the subject.
	ErrSubjectInUse = errors.New("subject has recorded marks")
	// ErrNoStudentProfile indicates the authenticated user is not linked to a student.
	ErrNoStudentProfile = errors.New("no student profile linked to user")
	// ErrNoParentEmail indicates the student has no parent email on file.
	ErrNoParentEmail = errors.New("parent email not on file")
)
