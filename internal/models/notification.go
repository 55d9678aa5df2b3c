package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification delivery outcomes recorded for audit display.
const (
	NotificationStatusSent      = "sent"
	NotificationStatusFailed    = "failed"
	NotificationStatusSkipped   = "skipped"
	NotificationStatusDuplicate = "duplicate"
)

// Notification kinds.
const (
	NotificationKindFailureAlert = "failure_alert"
	NotificationKindReportCard   = "report_card"
)

// NotificationLog records one attempt to notify a parent.
type NotificationLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	BatchID   string            `gorm:"size:64;index" json:"batch_id"`
	Kind      string            `gorm:"size:32;not null" json:"kind"`
	StudentID uint              `gorm:"not null;index" json:"student_id"`
	SubjectID *uint             `gorm:"index" json:"subject_id,omitempty"`
	ExamType  string            `gorm:"size:50" json:"exam_type"`
	Recipient string            `gorm:"size:255" json:"recipient"`
	Status    string            `gorm:"size:32;not null" json:"status"`
	Error     string            `gorm:"type:text" json:"error,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// AutoMigrateModels lists the tables owned by the service.
func AutoMigrateModels() []interface{} {
	return []interface{}{&Student{}, &Subject{}, &Mark{}, &NotificationLog{}}
}
