package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/marktrack-api/internal/models"
)

// NotificationLogFilter narrows the dispatch audit trail.
type NotificationLogFilter struct {
	StudentID uint
	Status    string
	BatchID   string
	Limit     int
	Offset    int
}

// NotificationLogRepository handles persistence for parent notification attempts.
type NotificationLogRepository interface {
	Create(ctx context.Context, entry *models.NotificationLog) error
	List(ctx context.Context, filter NotificationLogFilter) ([]models.NotificationLog, error)
}

type notificationLogRepository struct {
	db *gorm.DB
}

// NewNotificationLogRepository constructs a repository backed by GORM.
func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Create(ctx context.Context, entry *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *notificationLogRepository) List(ctx context.Context, filter NotificationLogFilter) ([]models.NotificationLog, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&models.NotificationLog{})
	if filter.StudentID > 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BatchID != "" {
		query = query.Where("batch_id = ?", filter.BatchID)
	}

	var entries []models.NotificationLog
	if err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
