package models

import (
	"time"

	"gorm.io/gorm"
)

// Holiday blocks citizen bookings on a specific date, in addition to the
// standing Sunday and second-Saturday rules.
type Holiday struct {
	gorm.Model
	Date   time.Time `json:"date" gorm:"index"`
	Reason string    `json:"reason"`
}
