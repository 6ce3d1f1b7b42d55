package entity

import "time"

type Sponsor struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	LogoURL     *string   `gorm:"type:text" json:"logo,omitempty"`
	Website     *string   `gorm:"type:text" json:"website,omitempty"`
	StartDate   time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time `gorm:"type:date;not null" json:"end_date"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsCurrentlyActive reports start_date <= day <= end_date, comparing
// calendar days only.
func (s Sponsor) IsCurrentlyActive(day time.Time) bool {
	d := dateOnly(day)
	return !d.Before(dateOnly(s.StartDate)) && !d.After(dateOnly(s.EndDate))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
