package grading

import "fmt"

// ValidateSubject checks the invariants a subject must satisfy before marks
// can be evaluated against it.
func ValidateSubject(subject Subject) error {
	switch {
	case subject.MaxMarks <= 0:
		return fmt.Errorf("%w: subject %q max marks must be positive", ErrInvalidInput, subject.Code)
	case subject.PassMarks < 0:
		return fmt.Errorf("%w: subject %q pass marks must not be negative", ErrInvalidInput, subject.Code)
	case subject.PassMarks > subject.MaxMarks:
		return fmt.Errorf("%w: subject %q pass marks %d exceed max marks %d", ErrInvalidInput, subject.Code, subject.PassMarks, subject.MaxMarks)
	}
	return nil
}

// ValidateMarks checks that an obtained mark lies within [0, max].
func ValidateMarks(marks int, subject Subject) error {
	if marks < 0 {
		return fmt.Errorf("%w: marks %d must not be negative", ErrInvalidInput, marks)
	}
	if marks > subject.MaxMarks {
		return fmt.Errorf("%w: marks %d exceed maximum %d for %q", ErrInvalidInput, marks, subject.MaxMarks, subject.Code)
	}
	return nil
}

// Evaluate determines the pass/fail status and grade of a single mark.
func Evaluate(mark MarkRecord, subject Subject) (SubjectEvaluation, error) {
	if err := ValidateSubject(subject); err != nil {
		return SubjectEvaluation{}, err
	}
	if err := ValidateMarks(mark.MarksObtained, subject); err != nil {
		return SubjectEvaluation{}, err
	}

	status := StatusFail
	if mark.MarksObtained >= subject.PassMarks {
		status = StatusPass
	}

	exact, _ := ratio(mark.MarksObtained, subject.MaxMarks)

	return SubjectEvaluation{
		SubjectID:     subject.ID,
		SubjectName:   subject.Name,
		SubjectCode:   subject.Code,
		MarksObtained: mark.MarksObtained,
		MaxMarks:      subject.MaxMarks,
		PassMarks:     subject.PassMarks,
		Status:        status,
		Grade:         Classify(exact),
	}, nil
}
