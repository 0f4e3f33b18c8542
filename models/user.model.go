package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the local mirror of an upstream identity. It is refreshed on every sign-in.
// PasswordHash is only populated for the local credential provider.
type User struct {
	gorm.Model
	UID          string     `json:"uid" gorm:"uniqueIndex;size:128;not null"`
	Email        string     `json:"email" gorm:"index;size:320"`
	DisplayName  string     `json:"displayName" gorm:"default:''"`
	PhotoURL     string     `json:"photoURL" gorm:"default:''"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
}
