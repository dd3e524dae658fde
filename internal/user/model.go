package user

import (
	"time"
)

type Role string

const (
	RoleOwner Role = "owner"
)

// User is the vault owner account. The setup flow creates exactly one.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null"`
	Role         Role      `gorm:"type:varchar(10);not null;default:'owner'" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
