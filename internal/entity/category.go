package entity

import "time"

const DefaultCategoryColor = "#FFFFFF"

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"size:50;not null;default:'#FFFFFF'" json:"color"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
