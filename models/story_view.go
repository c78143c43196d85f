package models

import "time"

// StoryView stores aggregated view counts per day and story.
type StoryView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"index:idx_sv_date_story,unique;type:date;not null" json:"date"`
	StoryID   string    `gorm:"index;index:idx_sv_date_story,unique;size:36;not null" json:"storyId"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
