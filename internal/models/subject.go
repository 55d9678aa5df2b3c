package models

import "time"

// Subject defines the maximum and pass marks used to evaluate entries.
type Subject struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Code      string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	MaxMarks  int       `gorm:"not null;default:100" json:"max_marks"`
	PassMarks int       `gorm:"not null;default:35" json:"pass_marks"`
	TeacherID *uint     `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
