package models

import (
	"database/sql/driver"

	"gorm.io/gorm"
)

type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *StringList) Scan(value interface{}) error { return jsonbScan(l, value) }

// Service is a global catalog entry owned by admins. Active services are
// auto-assigned to every active center on creation.
type Service struct {
	gorm.Model
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Category          string     `json:"category"`
	Fee               float64    `json:"fee"`
	ServiceCharge     float64    `json:"service_charge"` // upfront amount to confirm booking
	ProcessingTime    string     `json:"processing_time"`
	RequiredDocuments StringList `json:"required_documents" gorm:"type:jsonb"`
	IsActive          bool       `json:"is_active" gorm:"default:true"`
	VisitCount        int        `json:"visit_count" gorm:"default:0"`
	CreatedByID       uint       `json:"created_by"`
	CreatedBy         User       `json:"-" gorm:"foreignKey:CreatedByID"`
}
