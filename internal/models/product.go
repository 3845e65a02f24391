package models

import "gorm.io/datatypes"

type Product struct {
	BaseModelWithDeleted
	Name        string  `gorm:"not null;index"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"not null"`
	Stock       int     `gorm:"not null;default:0"`
	Category    string  `gorm:"index"`
	Color       string
	Size        string
	Shape       string
	// Images holds a JSON array of image URLs.
	Images datatypes.JSON `gorm:"type:jsonb"`
}
