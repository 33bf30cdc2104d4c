package models

import (
	"database/sql/driver"
	"strings"
	"time"

	"gorm.io/gorm"
)

type CenterStatus string

const (
	CenterActive      CenterStatus = "active"
	CenterInactive    CenterStatus = "inactive"
	CenterMaintenance CenterStatus = "maintenance"
)

type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	District string `json:"district"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

func (a Address) Value() (driver.Value, error) { return jsonbValue(a) }
func (a *Address) Scan(value interface{}) error { return jsonbScan(a, value) }

type ContactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (c ContactInfo) Value() (driver.Value, error) { return jsonbValue(c) }
func (c *ContactInfo) Scan(value interface{}) error { return jsonbScan(c, value) }

// ServiceSetting holds per-center overrides for one service, keyed by the
// service ID in ServiceSettingsMap.
type ServiceSetting struct {
	AvailabilityNotes string    `json:"availabilityNotes"`
	CustomFees        *float64  `json:"customFees,omitempty"`
	EstimatedDuration *int      `json:"estimatedDuration,omitempty"` // minutes
	UpdatedAt         time.Time `json:"updatedAt"`
	UpdatedByID       uint      `json:"updatedBy"`
}

type ServiceSettingsMap map[string]ServiceSetting

func (m ServiceSettingsMap) Value() (driver.Value, error) { return jsonbValue(m) }
func (m *ServiceSettingsMap) Scan(value interface{}) error { return jsonbScan(m, value) }

// AkshayaCenter is a physical service location. Centers are created inactive
// when a staff member registers and become visible to citizens only after an
// admin activates them.
type AkshayaCenter struct {
	gorm.Model
	Name            string             `json:"name"`
	Address         Address            `json:"address" gorm:"type:jsonb"`
	Latitude        float64            `json:"latitude"`
	Longitude       float64            `json:"longitude"`
	Contact         ContactInfo        `json:"contact" gorm:"type:jsonb"`
	OperatingHours  WeeklySchedule     `json:"operating_hours" gorm:"type:jsonb"`
	Status          CenterStatus       `json:"status" gorm:"default:inactive"`
	RegisteredByID  uint               `json:"registered_by"`
	RegisteredBy    User               `json:"-" gorm:"foreignKey:RegisteredByID"`
	Services        []Service          `json:"services,omitempty" gorm:"many2many:center_services;"`
	HiddenServices  []Service          `json:"hidden_services,omitempty" gorm:"many2many:center_hidden_services;"`
	ServiceSettings ServiceSettingsMap `json:"service_settings" gorm:"type:jsonb"`

	MaxAppointmentsPerDay int     `json:"max_appointments_per_day" gorm:"default:50"`
	Rating                float64 `json:"rating" gorm:"default:0"`
	VisitCount            int     `json:"visit_count" gorm:"default:0"`
}

func (c *AkshayaCenter) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = CenterInactive
	}
	if len(c.OperatingHours) == 0 {
		c.OperatingHours = DefaultWeeklySchedule()
	}
	return nil
}

// IsCurrentlyOpenAt reports whether the center is open at now according to
// its operating hours.
func (c *AkshayaCenter) IsCurrentlyOpenAt(now time.Time) bool {
	day := strings.ToLower(now.Weekday().String())
	schedule, ok := c.OperatingHours[day]
	if !ok || !schedule.IsWorking {
		return false
	}
	current := now.Hour()*60 + now.Minute()
	start := timeToMinutes(schedule.Start)
	end := timeToMinutes(schedule.End)
	if start < 0 || end < 0 {
		return false
	}
	return current >= start && current <= end
}

// HasService reports whether serviceID is enabled at this center. The
// Services association must be loaded.
func (c *AkshayaCenter) HasService(serviceID uint) bool {
	for _, s := range c.Services {
		if s.ID == serviceID {
			return true
		}
	}
	return false
}

// HasHiddenService reports whether serviceID is hidden at this center.
func (c *AkshayaCenter) HasHiddenService(serviceID uint) bool {
	for _, s := range c.HiddenServices {
		if s.ID == serviceID {
			return true
		}
	}
	return false
}
