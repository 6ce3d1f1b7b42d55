package entity

import (
	"time"

	"github.com/google/uuid"
)

type News struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Title         string      `gorm:"size:200;uniqueIndex;not null" json:"title"`
	Content       string      `gorm:"type:text;not null" json:"content"`
	PublishedDate time.Time   `gorm:"autoCreateTime;<-:create;index" json:"published_date"`
	CategoryID    uint        `gorm:"not null;index" json:"category_id"`
	Category      Category    `gorm:"constraint:OnDelete:CASCADE" json:"category"`
	Views         uint        `gorm:"not null;default:0" json:"views"`
	Video         *string     `gorm:"type:text" json:"video,omitempty"`
	OriginalLink  *string     `gorm:"type:text" json:"original_link,omitempty"`
	Author        string      `gorm:"size:200" json:"author"`
	Highlight     bool        `gorm:"not null;default:false" json:"highlight"`
	CreatedByID   *uuid.UUID  `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedBy     *User       `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	Sponsors      []Sponsor   `gorm:"many2many:news_sponsors;constraint:OnDelete:CASCADE" json:"sponsors"`
	Images        []NewsImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Comments      []Comment   `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Likes         []NewsLike  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (News) TableName() string {
	return "news"
}

type NewsImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NewsID    uint      `gorm:"not null;index" json:"news_id"`
	ImageURL  string    `gorm:"type:text;not null" json:"image"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// NewsLike is unique per (user, news).
type NewsLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_news_likes_user_news,priority:1" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	NewsID    uint      `gorm:"not null;uniqueIndex:idx_news_likes_user_news,priority:2;index" json:"news_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
