package models

import "time"

type Issue struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Issue    string `gorm:"type:text;not null" json:"issue"`
	Category string `json:"category"`
	UserID   uint   `gorm:"index;not null" json:"user_id"`
	User     *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
