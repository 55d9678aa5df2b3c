package grading

import (
	"errors"
	"fmt"
)

// BulkRow is one (student, marks) pair submitted for a subject and exam type.
type BulkRow struct {
	StudentID     uint `json:"student_id"`
	MarksObtained int  `json:"marks_obtained"`
}

// BulkRowResult reports the validation outcome of a single row.
type BulkRowResult struct {
	Row        int                `json:"row"`
	StudentID  uint               `json:"student_id"`
	Accepted   bool               `json:"accepted"`
	Reason     string             `json:"reason,omitempty"`
	Evaluation *SubjectEvaluation `json:"evaluation,omitempty"`

	err error
}

// Err returns the rejection cause, or nil for accepted rows.
func (r BulkRowResult) Err() error {
	return r.err
}

// BulkResult aggregates per-row outcomes of a bulk submission.
type BulkResult struct {
	SubjectID uint            `json:"subject_id"`
	ExamType  string          `json:"exam_type"`
	Accepted  int             `json:"accepted"`
	Rejected  int             `json:"rejected"`
	Rows      []BulkRowResult `json:"rows"`
}

// ErrDuplicateRow indicates the same student appears twice in one submission.
var ErrDuplicateRow = errors.New("duplicate row")

// ValidateBulk validates each row on its own. A rejected row never affects
// its neighbours. knownStudents may be nil to skip the existence check.
func ValidateBulk(subject Subject, examType string, rows []BulkRow, knownStudents map[uint]Student) (BulkResult, error) {
	if err := ValidateSubject(subject); err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{
		SubjectID: subject.ID,
		ExamType:  examType,
		Rows:      make([]BulkRowResult, 0, len(rows)),
	}

	seen := make(map[uint]int, len(rows))
	for i, row := range rows {
		outcome := BulkRowResult{Row: i + 1, StudentID: row.StudentID}

		switch first, dup := seen[row.StudentID]; {
		case row.StudentID == 0:
			outcome.err = fmt.Errorf("%w: student id is required", ErrInvalidInput)
		case dup:
			outcome.err = fmt.Errorf("%w: student %d already submitted in row %d", ErrDuplicateRow, row.StudentID, first)
		case knownStudents != nil && !studentKnown(knownStudents, row.StudentID):
			outcome.err = fmt.Errorf("%w: student %d", ErrNotFound, row.StudentID)
		default:
			evaluation, err := Evaluate(MarkRecord{StudentID: row.StudentID, SubjectID: subject.ID, MarksObtained: row.MarksObtained, ExamType: examType}, subject)
			if err != nil {
				outcome.err = err
			} else {
				outcome.Evaluation = &evaluation
			}
		}

		if row.StudentID != 0 {
			if _, dup := seen[row.StudentID]; !dup {
				seen[row.StudentID] = i + 1
			}
		}

		result.Rows = append(result.Rows, outcome)
	}
	result.tally()

	return result, nil
}

// Reject marks an accepted row as rejected, e.g. when storage refuses it.
func (b *BulkResult) Reject(index int, err error) {
	if index < 0 || index >= len(b.Rows) || err == nil {
		return
	}
	b.Rows[index].err = err
	b.Rows[index].Evaluation = nil
	b.tally()
}

func (b *BulkResult) tally() {
	b.Accepted, b.Rejected = 0, 0
	for i := range b.Rows {
		row := &b.Rows[i]
		row.Accepted = row.err == nil
		row.Reason = ""
		if row.err != nil {
			row.Reason = row.err.Error()
			b.Rejected++
			continue
		}
		b.Accepted++
	}
}

func studentKnown(students map[uint]Student, id uint) bool {
	_, ok := students[id]
	return ok
}
