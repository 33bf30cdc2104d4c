package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "pending"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusRejected   AppointmentStatus = "rejected"
)

// StatusTransitions is the fixed transition table. Completed, cancelled and
// rejected are terminal.
var StatusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:    {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusRejected:   {},
}

// IsValidStatus reports whether s is a known appointment status.
func IsValidStatus(s AppointmentStatus) bool {
	_, ok := StatusTransitions[s]
	return ok
}

// ValidStatusNames lists all known statuses, sorted, for error messages.
func ValidStatusNames() string {
	names := make([]string, 0, len(StatusTransitions))
	for s := range StatusTransitions {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// StatusChange is one append-only entry in an appointment's status history.
type StatusChange struct {
	Status     AppointmentStatus `json:"status"`
	ChangedBy  uint              `json:"changedBy"`
	ChangedAt  time.Time         `json:"changedAt"`
	Reason     string            `json:"reason,omitempty"`
	StaffName  string            `json:"staffName,omitempty"`
	CenterName string            `json:"centerName,omitempty"`
}

type StatusHistory []StatusChange

func (h StatusHistory) Value() (driver.Value, error) { return jsonbValue(h) }
func (h *StatusHistory) Scan(value interface{}) error { return jsonbScan(h, value) }

// Latest returns the most recent entry, or nil when the history is empty.
func (h StatusHistory) Latest() *StatusChange {
	if len(h) == 0 {
		return nil
	}
	return &h[len(h)-1]
}

type StaffNote struct {
	AuthorID  uint      `json:"author"`
	Content   string    `json:"content"`
	IsVisible bool      `json:"isVisible"`
	CreatedAt time.Time `json:"createdAt"`
}

type StaffNoteList []StaffNote

func (l StaffNoteList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *StaffNoteList) Scan(value interface{}) error { return jsonbScan(l, value) }

type Comment struct {
	AuthorID   uint      `json:"author"`
	AuthorType string    `json:"authorType"` // staff or user
	Content    string    `json:"content"`
	IsVisible  bool      `json:"isVisible"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CommentList []Comment

func (l CommentList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *CommentList) Scan(value interface{}) error { return jsonbScan(l, value) }

// ResultDocument is a staff-uploaded file attached to an appointment,
// persisted on local disk under uploads/documents.
type ResultDocument struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"` // stored filename
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	UploadedByID uint      `json:"uploadedBy"`
	UploadedAt   time.Time `json:"uploadedAt"`
	IsPublic     bool      `json:"isPublic"`
}

type ResultDocumentList []ResultDocument

func (l ResultDocumentList) Value() (driver.Value, error) { return jsonbValue(l) }
func (l *ResultDocumentList) Scan(value interface{}) error { return jsonbScan(l, value) }

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

type PaymentInfo struct {
	Status    PaymentStatus `json:"status"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	OrderID   string        `json:"orderId,omitempty"`
	PaymentID string        `json:"paymentId,omitempty"`
}

func (p PaymentInfo) Value() (driver.Value, error) { return jsonbValue(p) }
func (p *PaymentInfo) Scan(value interface{}) error { return jsonbScan(p, value) }

type AppointmentRating struct {
	Score    float64   `json:"score"`
	Feedback string    `json:"feedback,omitempty"`
	RatedAt  time.Time `json:"ratedAt"`
}

func (r *AppointmentRating) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return jsonbValue(*r)
}
func (r *AppointmentRating) Scan(value interface{}) error { return jsonbScan(r, value) }

// Appointment binds one user, one service and one center to a date and time
// slot. Staff of the owning center drive the status workflow; the citizen may
// edit or cancel before the day-of 9 AM cutoff.
type Appointment struct {
	gorm.Model
	UserID    uint          `json:"user_id" gorm:"index"`
	User      User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ServiceID uint          `json:"service_id"`
	Service   Service       `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	CenterID  uint          `json:"center_id" gorm:"index"`
	Center    AkshayaCenter `json:"center,omitempty" gorm:"foreignKey:CenterID"`

	AppointmentDate time.Time         `json:"appointment_date"`
	TimeSlot        string            `json:"time_slot"` // e.g. "09:30 AM"
	Status          AppointmentStatus `json:"status" gorm:"default:pending;index"`
	Notes           string            `json:"notes,omitempty"`
	ProcessingNotes string            `json:"processing_notes,omitempty"`

	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ActualDuration *int       `json:"actual_duration,omitempty"` // whole minutes

	StatusHistory   StatusHistory      `json:"status_history" gorm:"type:jsonb"`
	StaffNotes      StaffNoteList      `json:"staff_notes" gorm:"type:jsonb"`
	Comments        CommentList        `json:"comments" gorm:"type:jsonb"`
	ResultDocuments ResultDocumentList `json:"result_documents" gorm:"type:jsonb"`
	Payment         PaymentInfo        `json:"payment" gorm:"type:jsonb"`
	Rating          *AppointmentRating `json:"rating,omitempty" gorm:"type:jsonb"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.Payment.Status == "" {
		a.Payment.Status = PaymentUnpaid
		a.Payment.Currency = "INR"
	}
	return nil
}

// CanTransitionTo reports whether the transition table allows moving from the
// current status to target.
func (a *Appointment) CanTransitionTo(target AppointmentStatus) bool {
	for _, allowed := range StatusTransitions[a.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ChangeStatus applies a status transition in memory: validates the target
// against the transition table, appends the history entry, and on completion
// stamps CompletedAt and the actual duration in whole minutes measured from
// the in_progress history entry when one exists. The appointment is left
// untouched when the transition is rejected. Persisting is the caller's job.
func (a *Appointment) ChangeStatus(target AppointmentStatus, entry StatusChange) error {
	if !IsValidStatus(target) {
		return fmt.Errorf("invalid status %q, valid statuses are: %s", target, ValidStatusNames())
	}
	if !a.CanTransitionTo(target) {
		return fmt.Errorf("cannot change status from %s to %s", a.Status, target)
	}

	entry.Status = target
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now()
	}

	a.Status = target
	a.StatusHistory = append(a.StatusHistory, entry)

	if target == StatusCompleted {
		completedAt := entry.ChangedAt
		a.CompletedAt = &completedAt
		for _, h := range a.StatusHistory {
			if h.Status == StatusInProgress {
				minutes := int(math.Round(completedAt.Sub(h.ChangedAt).Minutes()))
				a.ActualDuration = &minutes
				break
			}
		}
	}

	return nil
}
