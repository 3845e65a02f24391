package models

import "gorm.io/datatypes"

type Review struct {
	BaseModel
	UserID    string `gorm:"not null;uniqueIndex:idx_review_user_product"`
	ProductID string `gorm:"not null;uniqueIndex:idx_review_user_product"`
	User      *User  `gorm:"foreignKey:UserID"`
	Rating    int    `gorm:"not null"`
	Comment   string `gorm:"type:text"`
	// Photos holds a JSON array of image URLs attached by the reviewer.
	Photos datatypes.JSON `gorm:"type:jsonb"`
	// IsVerifiedBuyer is true when the reviewer had a delivered order
	// containing the product at posting time. Posting requires it, so
	// every stored review carries true; the column keeps the fact
	// explicit in responses.
	IsVerifiedBuyer bool `gorm:"default:false"`
}
