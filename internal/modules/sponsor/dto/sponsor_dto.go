package dto

import (
	"io"
	"time"
)

const DateLayout = "2006-01-02"

// SponsorRequest binds from JSON or multipart form. The optional logo file
// travels separately as LogoFile.
type SponsorRequest struct {
	Name        string  `json:"name" form:"name" binding:"required,max=100"`
	Website     *string `json:"website" form:"website" binding:"omitempty,url"`
	StartDate   string  `json:"start_date" form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" form:"end_date" binding:"required,datetime=2006-01-02"`
	IsActive    *bool   `json:"is_active" form:"is_active"`
	Description *string `json:"description" form:"description"`
}

type PatchSponsorRequest struct {
	Name        *string `json:"name" form:"name" binding:"omitempty,min=1,max=100"`
	Website     *string `json:"website" form:"website" binding:"omitempty,url"`
	StartDate   *string `json:"start_date" form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	IsActive    *bool   `json:"is_active" form:"is_active"`
	Description *string `json:"description" form:"description"`
}

type LogoFile struct {
	Reader   io.Reader
	FileName string
}

type SponsorResponse struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Logo              *string   `json:"logo"`
	Website           *string   `json:"website"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	IsActive          bool      `json:"is_active"`
	IsCurrentlyActive bool      `json:"is_currently_active"`
	Description       *string   `json:"description"`
	CreatedAt         time.Time `json:"created_at"`
}
