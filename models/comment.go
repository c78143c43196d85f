package models

import "time"

// StoryComment is a reply attached to a story.
type StoryComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   string    `gorm:"size:36;index;not null" json:"storyId"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
