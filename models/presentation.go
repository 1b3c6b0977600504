package models

import "gorm.io/gorm"

// Presentation is a member's stock pitch submitted for club voting.
type Presentation struct {
	gorm.Model
	UserID uint   `gorm:"index" json:"-"`
	Symbol string `json:"symbol"`
	Title  string `json:"title"`
	Thesis string `json:"thesis"`
}

// Vote records one member's vote on a presentation. Re-voting replaces
// the prior row, enforced by the composite unique index.
type Vote struct {
	gorm.Model
	UserID         uint   `gorm:"uniqueIndex:idx_user_presentation" json:"-"`
	PresentationID uint   `gorm:"uniqueIndex:idx_user_presentation" json:"presentationId"`
	Direction      string `json:"direction"` // up/down
}
