package grading

import (
	"fmt"
	"sort"
	"time"
)

// BuildStudentReport evaluates every mark the student holds for examType and
// aggregates them into a report card. Marks belonging to other students or
// other exam types are ignored.
func BuildStudentReport(student Student, examType string, marks []MarkRecord, subjects map[uint]Subject, now time.Time) (StudentReport, error) {
	evaluations := make([]SubjectEvaluation, 0, len(marks))
	for _, mark := range marks {
		if mark.StudentID != student.ID || mark.ExamType != examType {
			continue
		}

		subject, ok := subjects[mark.SubjectID]
		if !ok {
			return StudentReport{}, fmt.Errorf("%w: subject %d referenced by student %d", ErrNotFound, mark.SubjectID, student.ID)
		}

		evaluation, err := Evaluate(mark, subject)
		if err != nil {
			return StudentReport{}, fmt.Errorf("student %d: %w", student.ID, err)
		}
		evaluations = append(evaluations, evaluation)
	}

	if len(evaluations) == 0 {
		return StudentReport{}, fmt.Errorf("%w: student %d has no %q marks", ErrNoDataForExam, student.ID, examType)
	}

	sort.SliceStable(evaluations, func(i, j int) bool {
		if evaluations[i].SubjectCode != evaluations[j].SubjectCode {
			return evaluations[i].SubjectCode < evaluations[j].SubjectCode
		}
		return evaluations[i].SubjectID < evaluations[j].SubjectID
	})

	report := StudentReport{
		StudentID:   student.ID,
		StudentName: student.Name,
		RollNo:      student.RollNo,
		ClassName:   student.ClassName,
		Section:     student.Section,
		ExamType:    examType,
		Subjects:    evaluations,
		Result:      StatusPass,
		GeneratedAt: now,
	}

	for _, evaluation := range evaluations {
		report.TotalMarks += evaluation.MarksObtained
		report.TotalMaxMarks += evaluation.MaxMarks
		if evaluation.Status == StatusFail {
			report.Result = StatusFail
		}
	}

	if report.TotalMaxMarks == 0 {
		report.OverallGrade = GradeF
		report.Result = StatusFail
		return report, nil
	}

	report.exact, report.Percentage = ratio(report.TotalMarks, report.TotalMaxMarks)
	report.OverallGrade = Classify(report.exact)

	return report, nil
}
