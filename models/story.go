package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Story is an ephemeral photo post. It is visible until the archiver flips IsVisible after ExpiredAt.
type Story struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PhotoURL  string    `gorm:"size:1024;not null" json:"photoUrl"`
	PhotoPath string    `gorm:"size:1024" json:"-"` // filesystem path of the stored photo
	Caption   *string   `gorm:"size:2000" json:"caption"`
	Location  string    `gorm:"type:text" json:"location"`
	IsVisible bool      `gorm:"index;not null" json:"isVisible"`
	ExpiredAt time.Time `gorm:"index;not null" json:"expiredAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
