package grading

import (
	"fmt"
	"strings"
)

type noticeKey struct {
	student  uint
	subject  uint
	examType string
}

// DetectFailures returns one notice per failing (student, subject, exam type)
// among marks that satisfy every filter set. Notices keep the order of the
// input marks; repeated keys are collapsed onto the first occurrence.
func DetectFailures(marks []MarkRecord, subjects map[uint]Subject, students map[uint]Student, filter FailureFilter) ([]FailureNotice, error) {
	notices := make([]FailureNotice, 0)
	emitted := map[noticeKey]struct{}{}

	for _, mark := range marks {
		if filter.ExamType != nil && mark.ExamType != *filter.ExamType {
			continue
		}
		if filter.SubjectID != nil && mark.SubjectID != *filter.SubjectID {
			continue
		}

		student, ok := students[mark.StudentID]
		if !ok {
			return nil, fmt.Errorf("%w: student %d", ErrNotFound, mark.StudentID)
		}
		if filter.ClassName != nil && student.ClassName != *filter.ClassName {
			continue
		}

		subject, ok := subjects[mark.SubjectID]
		if !ok {
			return nil, fmt.Errorf("%w: subject %d", ErrNotFound, mark.SubjectID)
		}

		evaluation, err := Evaluate(mark, subject)
		if err != nil {
			return nil, fmt.Errorf("student %d: %w", student.ID, err)
		}
		if evaluation.Status != StatusFail {
			continue
		}

		key := noticeKey{student: student.ID, subject: subject.ID, examType: mark.ExamType}
		if _, dup := emitted[key]; dup {
			continue
		}
		emitted[key] = struct{}{}

		notices = append(notices, FailureNotice{
			StudentID:     student.ID,
			StudentName:   student.Name,
			RollNo:        student.RollNo,
			ClassName:     student.ClassName,
			Section:       student.Section,
			SubjectID:     subject.ID,
			SubjectName:   subject.Name,
			ExamType:      mark.ExamType,
			MarksObtained: evaluation.MarksObtained,
			MaxMarks:      evaluation.MaxMarks,
			PassMarks:     evaluation.PassMarks,
			ParentName:    student.ParentName,
			ParentEmail:   optionalEmail(student.ParentEmail),
		})
	}

	return notices, nil
}

func optionalEmail(email string) *string {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
