package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/marktrack-api/internal/models"
)

// MarkFilter narrows mark queries. Zero values place no constraint.
type MarkFilter struct {
	StudentID  uint
	SubjectID  uint
	ExamType   string
	ClassName  string
	Section    string
	StudentIDs []uint
	Page       int
	PageSize   int
}

// MarkRepository persists teacher-entered marks.
type MarkRepository interface {
	Create(ctx context.Context, mark *models.Mark) error
	Update(ctx context.Context, mark *models.Mark) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (models.Mark, error)
	Exists(ctx context.Context, studentID, subjectID uint, examType string) (bool, error)
	List(ctx context.Context, filter MarkFilter) ([]models.Mark, int64, error)
	HighestForSubject(ctx context.Context, subjectID uint) (int, error)
}

type markRepository struct {
	db *gorm.DB
}

// NewMarkRepository constructs a mark repository.
func NewMarkRepository(db *gorm.DB) MarkRepository {
	return &markRepository{db: db}
}

func (r *markRepository) Create(ctx context.Context, mark *models.Mark) error {
	return r.db.WithContext(ctx).Create(mark).Error
}

func (r *markRepository) Update(ctx context.Context, mark *models.Mark) error {
	return r.db.WithContext(ctx).Save(mark).Error
}

func (r *markRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Mark{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *markRepository) GetByID(ctx context.Context, id uint) (models.Mark, error) {
	var mark models.Mark
	if err := r.db.WithContext(ctx).First(&mark, id).Error; err != nil {
		return models.Mark{}, err
	}

	return mark, nil
}

func (r *markRepository) Exists(ctx context.Context, studentID, subjectID uint, examType string) (bool, error) {
	var mark models.Mark
	err := r.db.WithContext(ctx).
		Select("id").
		Where("student_id = ? AND subject_id = ? AND exam_type = ?", studentID, subjectID, examType).
		First(&mark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HighestForSubject returns the largest stored mark for a subject, or zero
// when none exist.
func (r *markRepository) HighestForSubject(ctx context.Context, subjectID uint) (int, error) {
	var highest int
	err := r.db.WithContext(ctx).
		Model(&models.Mark{}).
		Select("COALESCE(MAX(marks_obtained), 0)").
		Where("subject_id = ?", subjectID).
		Scan(&highest).Error
	if err != nil {
		return 0, err
	}
	return highest, nil
}

// List returns marks ordered by id so snapshots are stable between calls.
func (r *markRepository) List(ctx context.Context, filter MarkFilter) ([]models.Mark, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Mark{})

	if filter.StudentID > 0 {
		query = query.Where("marks.student_id = ?", filter.StudentID)
	}
	if len(filter.StudentIDs) > 0 {
		query = query.Where("marks.student_id IN ?", filter.StudentIDs)
	}
	if filter.SubjectID > 0 {
		query = query.Where("marks.subject_id = ?", filter.SubjectID)
	}
	if filter.ExamType != "" {
		query = query.Where("marks.exam_type = ?", filter.ExamType)
	}
	if filter.ClassName != "" || filter.Section != "" {
		students := r.db.WithContext(ctx).Model(&models.Student{}).Select("id")
		if filter.ClassName != "" {
			students = students.Where("class_name = ?", filter.ClassName)
		}
		if filter.Section != "" {
			students = students.Where("section = ?", filter.Section)
		}
		query = query.Where("marks.student_id IN (?)", students)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("marks.id ASC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var marks []models.Mark
	if err := query.Find(&marks).Error; err != nil {
		return nil, 0, err
	}

	return marks, total, nil
}
