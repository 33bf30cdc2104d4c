package models

import (
	"database/sql/driver"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

type StaffRole string

const (
	StaffRoleStaff      StaffRole = "staff"
	StaffRoleSupervisor StaffRole = "supervisor"
)

// PermissionAction is a named capability a staff member may hold.
type PermissionAction string

const (
	PermManageAppointments PermissionAction = "manage_appointments"
	PermUpdateStatus       PermissionAction = "update_status"
	PermAddComments        PermissionAction = "add_comments"
	PermUploadDocuments    PermissionAction = "upload_documents"
	PermManageServices     PermissionAction = "manage_services"
	PermViewAnalytics      PermissionAction = "view_analytics"
	PermManageSchedule     PermissionAction = "manage_schedule"
	PermViewRatings        PermissionAction = "view_ratings"
	PermManageRatings      PermissionAction = "manage_ratings"
	PermViewReports        PermissionAction = "view_reports"
)

// ValidPermissionActions is the closed set of recognized permission actions.
var ValidPermissionActions = map[PermissionAction]bool{
	PermManageAppointments: true,
	PermUpdateStatus:       true,
	PermAddComments:        true,
	PermUploadDocuments:    true,
	PermManageServices:     true,
	PermViewAnalytics:      true,
	PermManageSchedule:     true,
	PermViewRatings:        true,
	PermManageRatings:      true,
	PermViewReports:        true,
}

// DefaultPermissionActions are granted to every newly created staff record
// that carries no explicit permission list.
var DefaultPermissionActions = []PermissionAction{
	PermManageAppointments,
	PermUpdateStatus,
	PermAddComments,
	PermUploadDocuments,
	PermManageServices,
	PermViewAnalytics,
}

type StaffPermission struct {
	Action    PermissionAction `json:"action"`
	Granted   bool             `json:"granted"`
	GrantedBy uint             `json:"granted_by,omitempty"`
	GrantedAt time.Time        `json:"granted_at"`
}

type PermissionList []StaffPermission

func (p PermissionList) Value() (driver.Value, error) { return jsonbValue(p) }
func (p *PermissionList) Scan(value interface{}) error { return jsonbScan(p, value) }

// Has reports whether the list carries a granted entry for action.
func (p PermissionList) Has(action PermissionAction) bool {
	for _, perm := range p {
		if perm.Action == action {
			return perm.Granted
		}
	}
	return false
}

// DaySchedule is one weekday's working window, times as "HH:MM" in 24h.
type DaySchedule struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	IsWorking bool   `json:"isWorking"`
}

// WeeklySchedule maps lowercase weekday names to their windows.
type WeeklySchedule map[string]DaySchedule

func (w WeeklySchedule) Value() (driver.Value, error) { return jsonbValue(w) }
func (w *WeeklySchedule) Scan(value interface{}) error { return jsonbScan(w, value) }

// DefaultWeeklySchedule mirrors the standard center week: weekdays and
// Saturday 09:00-17:00, Sunday 10:00-16:00 off.
func DefaultWeeklySchedule() WeeklySchedule {
	schedule := WeeklySchedule{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"} {
		schedule[day] = DaySchedule{Start: "09:00", End: "17:00", IsWorking: true}
	}
	schedule["sunday"] = DaySchedule{Start: "10:00", End: "16:00", IsWorking: false}
	return schedule
}

// timeToMinutes converts "HH:MM" to minutes since midnight. Returns -1 when
// the string is malformed.
func timeToMinutes(s string) int {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return -1
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return -1
	}
	return hours*60 + minutes
}

type StaffPreferences struct {
	Notifications struct {
		NewAppointments bool `json:"newAppointments"`
		StatusUpdates   bool `json:"statusUpdates"`
		Reminders       bool `json:"reminders"`
		SystemAlerts    bool `json:"systemAlerts"`
	} `json:"notifications"`
	Dashboard struct {
		DefaultView         string `json:"defaultView"` // today, week, month
		AppointmentsPerPage int    `json:"appointmentsPerPage"`
	} `json:"dashboard"`
}

func (p StaffPreferences) Value() (driver.Value, error) { return jsonbValue(p) }
func (p *StaffPreferences) Scan(value interface{}) error { return jsonbScan(p, value) }

func DefaultStaffPreferences() StaffPreferences {
	prefs := StaffPreferences{}
	prefs.Notifications.NewAppointments = true
	prefs.Notifications.StatusUpdates = true
	prefs.Notifications.Reminders = true
	prefs.Notifications.SystemAlerts = true
	prefs.Dashboard.DefaultView = "today"
	prefs.Dashboard.AppointmentsPerPage = 20
	return prefs
}

type StaffStatistics struct {
	TotalAppointmentsHandled int     `json:"totalAppointmentsHandled"`
	AverageProcessingTime    float64 `json:"averageProcessingTime"` // minutes
	CompletionRate           float64 `json:"completionRate"`        // 0-100
	UserSatisfactionScore    float64 `json:"userSatisfactionScore"` // 0-5
}

func (s StaffStatistics) Value() (driver.Value, error) { return jsonbValue(s) }
func (s *StaffStatistics) Scan(value interface{}) error { return jsonbScan(s, value) }

// Staff extends a User with role "staff": center assignment, permissions and
// working hours. Exactly one active record per user.
type Staff struct {
	gorm.Model
	UserID       uint             `json:"user_id" gorm:"uniqueIndex"`
	User         User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CenterID     uint             `json:"center_id" gorm:"index"`
	Center       AkshayaCenter    `json:"center,omitempty" gorm:"foreignKey:CenterID"`
	Role         StaffRole        `json:"role" gorm:"default:staff"`
	Permissions  PermissionList   `json:"permissions" gorm:"type:jsonb"`
	IsActive     bool             `json:"is_active" gorm:"default:true"`
	AssignedByID *uint            `json:"assigned_by,omitempty"`
	LastLogin    *time.Time       `json:"last_login,omitempty"`
	WorkingHours WeeklySchedule   `json:"working_hours" gorm:"type:jsonb"`
	Preferences  StaffPreferences `json:"preferences" gorm:"type:jsonb"`
	Statistics   StaffStatistics  `json:"statistics" gorm:"type:jsonb"`
}

// BeforeCreate grants the default permission set when none was supplied and
// fills in the default schedule and preferences.
func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if len(s.Permissions) == 0 {
		now := time.Now()
		var grantedBy uint
		if s.AssignedByID != nil {
			grantedBy = *s.AssignedByID
		}
		for _, action := range DefaultPermissionActions {
			s.Permissions = append(s.Permissions, StaffPermission{
				Action:    action,
				Granted:   true,
				GrantedBy: grantedBy,
				GrantedAt: now,
			})
		}
	}
	if len(s.WorkingHours) == 0 {
		s.WorkingHours = DefaultWeeklySchedule()
	}
	if s.Preferences.Dashboard.AppointmentsPerPage == 0 {
		s.Preferences = DefaultStaffPreferences()
	}
	return nil
}

// BeforeSave keeps aggregate statistics inside their valid ranges.
func (s *Staff) BeforeSave(tx *gorm.DB) error {
	if s.Statistics.CompletionRate < 0 {
		s.Statistics.CompletionRate = 0
	} else if s.Statistics.CompletionRate > 100 {
		s.Statistics.CompletionRate = 100
	}
	if s.Statistics.UserSatisfactionScore < 0 {
		s.Statistics.UserSatisfactionScore = 0
	} else if s.Statistics.UserSatisfactionScore > 5 {
		s.Statistics.UserSatisfactionScore = 5
	}
	return nil
}

// HasPermission reports whether the staff member holds a granted permission
// for action. Inactive staff hold no permissions.
func (s *Staff) HasPermission(action PermissionAction) bool {
	if !s.IsActive {
		return false
	}
	return s.Permissions.Has(action)
}

// IsCurrentlyWorkingAt reports whether now falls inside the staff member's
// working window for that weekday, bounds inclusive, comparing
// minutes-since-midnight.
func (s *Staff) IsCurrentlyWorkingAt(now time.Time) bool {
	day := strings.ToLower(now.Weekday().String())
	schedule, ok := s.WorkingHours[day]
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
