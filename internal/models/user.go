package models

import "time"

// User represents application user.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:64;not null"`
	Email        string `gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Currency     string `gorm:"size:8;default:INR"`
	Theme        string `gorm:"size:16;default:light"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	ResetPasswordToken  string `gorm:"size:64;index"` // SHA-256 hex of the emailed token
	ResetPasswordExpire *time.Time
}
