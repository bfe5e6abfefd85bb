package model

import "time"

// User data model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

// AuthToken is the opaque bearer token of a user. A user holds at most one.
type AuthToken struct {
	Key     string    `gorm:"primaryKey;size:40" json:"key"`
	UserID  uint      `gorm:"uniqueIndex;not null" json:"-"`
	User    User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Created time.Time `gorm:"autoCreateTime" json:"created"`
}
