package models

import (
	"time"
)

// Role gates which operations a user may perform.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAgent  Role = "agent"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether s is a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleBuyer, RoleSeller, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// AssignableRole reports whether s may be chosen at registration.
// Admin accounts are only created by other admins.
func AssignableRole(s string) bool {
	switch Role(s) {
	case RoleBuyer, RoleSeller, RoleAgent:
		return true
	}
	return false
}

// User represents an account on the platform
type User struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	Role       Role      `gorm:"not null;default:buyer" json:"role"`
	Phone      string    `json:"phone,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	Location   string    `json:"location,omitempty"`
	IsActive   bool      `gorm:"not null;default:true" json:"isActive"`
	IsVerified bool      `gorm:"not null;default:false" json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// CanManageListings reports whether the user's role allows creating
// property listings.
func (u *User) CanManageListings() bool {
	switch u.Role {
	case RoleSeller, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Favorite is the edge between a user and a property they marked as
// favorite. Both directions of the relation are derived from this single
// row, so toggling is one insert or one delete.
type Favorite struct {
	UserID     uint      `gorm:"primaryKey" json:"userId"`
	PropertyID uint      `gorm:"primaryKey" json:"propertyId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName overrides the table name
func (Favorite) TableName() string {
	return "favorites"
}
