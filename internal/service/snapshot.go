package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/marktrack-api/internal/grading"
	"github.com/noah-isme/marktrack-api/internal/models"
	"github.com/noah-isme/marktrack-api/internal/repository"
)

func toGradingStudent(student models.Student) grading.Student {
	return grading.Student{
		ID:          student.ID,
		Name:        student.Name,
		RollNo:      student.RollNo,
		ClassName:   student.ClassName,
		Section:     student.Section,
		ParentName:  student.ParentName,
		ParentEmail: student.ParentEmail,
	}
}

func toGradingSubject(subject models.Subject) grading.Subject {
	return grading.Subject{
		ID:        subject.ID,
		Name:      subject.Name,
		Code:      subject.Code,
		MaxMarks:  subject.MaxMarks,
		PassMarks: subject.PassMarks,
	}
}

func toMarkRecord(mark models.Mark) grading.MarkRecord {
	return grading.MarkRecord{
		StudentID:     mark.StudentID,
		SubjectID:     mark.SubjectID,
		MarksObtained: mark.MarksObtained,
		ExamType:      mark.ExamType,
		EnteredBy:     mark.EnteredBy,
	}
}

func toMarkRecords(marks []models.Mark) []grading.MarkRecord {
	out := make([]grading.MarkRecord, 0, len(marks))
	for _, mark := range marks {
		out = append(out, toMarkRecord(mark))
	}
	return out
}

func studentIndex(students []models.Student) map[uint]grading.Student {
	index := make(map[uint]grading.Student, len(students))
	for _, student := range students {
		index[student.ID] = toGradingStudent(student)
	}
	return index
}

func subjectIndex(subjects []models.Subject) map[uint]grading.Subject {
	index := make(map[uint]grading.Subject, len(subjects))
	for _, subject := range subjects {
		index[subject.ID] = toGradingSubject(subject)
	}
	return index
}

func distinctSubjectIDs(marks []models.Mark) []uint {
	seen := make(map[uint]struct{}, len(marks))
	ids := make([]uint, 0)
	for _, mark := range marks {
		if _, ok := seen[mark.SubjectID]; ok {
			continue
		}
		seen[mark.SubjectID] = struct{}{}
		ids = append(ids, mark.SubjectID)
	}
	return ids
}

func distinctStudentIDs(marks []models.Mark) []uint {
	seen := make(map[uint]struct{}, len(marks))
	ids := make([]uint, 0)
	for _, mark := range marks {
		if _, ok := seen[mark.StudentID]; ok {
			continue
		}
		seen[mark.StudentID] = struct{}{}
		ids = append(ids, mark.StudentID)
	}
	return ids
}

func loadSubjectsFor(ctx context.Context, repo repository.SubjectRepository, marks []models.Mark) (map[uint]grading.Subject, error) {
	subjects, err := repo.ListByIDs(ctx, distinctSubjectIDs(marks))
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	return subjectIndex(subjects), nil
}

// notFound converts a repository miss into the domain sentinel.
func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return err
}

func examOrDefault(examType, fallback string) string {
	if examType != "" {
		return examType
	}
	if fallback != "" {
		return fallback
	}
	return models.DefaultExamType
}
