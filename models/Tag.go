package models

import "gorm.io/gorm"

// Tag is immutable reference data used to categorize recipes. Rows are
// managed by administrators only; the API exposes them read-only.
type Tag struct {
	gorm.Model
	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Color string `gorm:"uniqueIndex;not null" json:"color"`
	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`
}
