package models

import "time"

// Student is a learner enrolled in a class section. UserID links the
// student to the principal issued by the authentication provider.
type Student struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      *uint     `gorm:"uniqueIndex" json:"user_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	RollNo      string    `gorm:"size:50;uniqueIndex;not null" json:"roll_no"`
	ClassName   string    `gorm:"size:50;not null;index:idx_students_class_section" json:"class_name"`
	Section     string    `gorm:"size:10;not null;default:A;index:idx_students_class_section" json:"section"`
	ParentName  string    `gorm:"size:255" json:"parent_name"`
	ParentEmail string    `gorm:"size:255" json:"parent_email"`
	ParentPhone string    `gorm:"size:20" json:"parent_phone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
