package models

import (
	"time"
)

type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	Type      string    `json:"type" gorm:"default:info"` // appointment, status, info, system
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Meta      JSONMap   `json:"meta,omitempty" gorm:"type:jsonb"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}
