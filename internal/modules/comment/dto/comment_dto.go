package dto

import (
	"time"

	"github.com/google/uuid"
)

type CommentRequest struct {
	News    uint   `json:"news" binding:"required"`
	Content string `json:"content" binding:"required,max=2000"`
}

type ReplaceCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// UpdateCommentRequest changes the content when present. The parent news
// is fixed once the comment exists.
type UpdateCommentRequest struct {
	Content *string `json:"content" binding:"omitempty,min=1,max=2000"`
}

type CommentFilter struct {
	News uint `form:"news"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	News      uint      `json:"news"`
	UserID    uuid.UUID `json:"user"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
