package grading

import "errors"

var (
	// ErrInvalidInput indicates a mark outside [0, max] or a malformed subject.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoDataForExam indicates no marks exist for the requested exam type.
	ErrNoDataForExam = errors.New("no data for exam")
	// ErrNotFound indicates a referenced student or subject is missing from the snapshot.
	ErrNotFound = errors.New("not found")
)
