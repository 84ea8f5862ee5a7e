package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SalonID       uuid.UUID `gorm:"type:uuid;index;not null" json:"salonId"`
	AppointmentID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reminder_appointment_channel,priority:1;not null" json:"appointmentId"`
	Channel       string    `gorm:"type:varchar(20);uniqueIndex:idx_reminder_appointment_channel,priority:2" json:"channel"` // sms, log, amqp, kafka
	Message       string    `gorm:"type:text" json:"message"`
	Status        string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage  string    `gorm:"type:text" json:"errorMessage,omitempty"`
	SentAt        time.Time `json:"sentAt"`
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
