package models

// Course groups exams under an academic course.
type Course struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
	Code string `gorm:"size:64;uniqueIndex;not null" json:"code"`
}
