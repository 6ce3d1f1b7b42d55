package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type NewsRequest struct {
	Title        string  `json:"title" binding:"required,max=200"`
	Content      string  `json:"content" binding:"required"`
	CategoryID   uint    `json:"category_id" binding:"required"`
	Video        *string `json:"video" binding:"omitempty,url"`
	OriginalLink *string `json:"original_link" binding:"omitempty,url"`
	Author       string  `json:"author" binding:"max=200"`
	Highlight    bool    `json:"highlight"`
	SponsorIDs   []uint  `json:"sponsor_ids"`
}

// PatchNewsRequest changes only the fields that are present.
type PatchNewsRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content      *string `json:"content" binding:"omitempty,min=1"`
	CategoryID   *uint   `json:"category_id" binding:"omitempty,min=1"`
	Video        *string `json:"video" binding:"omitempty,url"`
	OriginalLink *string `json:"original_link" binding:"omitempty,url"`
	Author       *string `json:"author" binding:"omitempty,max=200"`
	Highlight    *bool   `json:"highlight"`
	SponsorIDs   *[]uint `json:"sponsor_ids"`
}

type ImageFile struct {
	Reader   io.Reader
	FileName string
}

type CategorySummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type SponsorSummary struct {
	ID      uint    `json:"id"`
	Name    string  `json:"name"`
	Logo    *string `json:"logo"`
	Website *string `json:"website"`
}

type ImageResponse struct {
	ID        uint      `json:"id"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentSummary struct {
	ID        uint      `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type NewsResponse struct {
	ID            uint             `json:"id"`
	Title         string           `json:"title"`
	Content       string           `json:"content"`
	PublishedDate time.Time        `json:"published_date"`
	Category      CategorySummary  `json:"category"`
	Views         uint             `json:"views"`
	Video         *string          `json:"video"`
	OriginalLink  *string          `json:"original_link"`
	Author        string           `json:"author"`
	Highlight     bool             `json:"highlight"`
	CreatedBy     *uuid.UUID       `json:"created_by"`
	Sponsors      []SponsorSummary `json:"sponsors"`
	Images        []ImageResponse  `json:"images"`
	LikesCount    int64            `json:"likes_count"`
	CommentsCount int64            `json:"comments_count"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type NewsDetailResponse struct {
	NewsResponse
	Comments []CommentSummary `json:"comments"`
	Liked    bool             `json:"liked"`
}
