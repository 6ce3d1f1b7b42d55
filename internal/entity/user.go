package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is a named permission group. The three canonical groups are
// admin, writer and reader.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Group) TableName() string {
	return "auth_groups"
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	// Role mirrors group membership. Only the role reconciler writes it.
	Role      string    `gorm:"size:10;not null;default:'reader'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime;<-:create" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserGroup is the membership join between users and groups.
type UserGroup struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	GroupID   uint      `gorm:"primaryKey" json:"group_id"`
	Group     Group     `gorm:"constraint:OnDelete:CASCADE" json:"group"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}
