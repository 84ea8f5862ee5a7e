package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// BlockingStatuses are the appointment states that occupy a professional's time.
var BlockingStatuses = []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed}

// Appointment is a confirmed calendar entry. DateTime is stored as the salon's
// wall-clock reading; duration always comes from the linked Service.
type Appointment struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SalonID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"salonId"`
	ServiceID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"serviceId"`
	ProfessionalID uuid.UUID  `gorm:"type:uuid;index:idx_appointments_professional_time,priority:1;not null" json:"professionalId"`
	ClientID       *uuid.UUID `gorm:"type:uuid;index" json:"clientId,omitempty"`

	DateTime time.Time         `gorm:"not null;index:idx_appointments_professional_time,priority:2" json:"dateTime"`
	Status   AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	Notes              string     `gorm:"type:text" json:"notes"`
	CancellationReason string     `gorm:"type:text" json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Service      *Service      `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Professional *Professional `gorm:"foreignKey:ProfessionalID" json:"professional,omitempty"`
	Client       *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// AfterFind puts timestamps back in UTC; drivers return timestamptz in the
// host's local zone.
func (a *Appointment) AfterFind(tx *gorm.DB) (err error) {
	a.DateTime = a.DateTime.UTC()
	a.CancelledAt = utcPtr(a.CancelledAt)
	a.CompletedAt = utcPtr(a.CompletedAt)
	return
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
