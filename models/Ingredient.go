package models

import "gorm.io/gorm"

// Ingredient is immutable reference data, bulk-loaded once from a CSV
// dataset by cmd/import_ingredients.
type Ingredient struct {
	gorm.Model
	Name            string `gorm:"index;not null" json:"name"`
	MeasurementUnit string `gorm:"not null" json:"measurement_unit"`
}
