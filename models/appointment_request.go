package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// AppointmentRequest is a booking awaiting staff approval.
type AppointmentRequest struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SalonID        uuid.UUID `gorm:"type:uuid;index;not null" json:"salonId"`
	ServiceID      uuid.UUID `gorm:"type:uuid;not null" json:"serviceId"`
	ProfessionalID uuid.UUID `gorm:"type:uuid;index;not null" json:"professionalId"`
	DateTime       time.Time `gorm:"not null" json:"dateTime"`

	ClientName  string `gorm:"not null" json:"clientName"`
	ClientPhone string `gorm:"not null;index" json:"clientPhone"`
	ClientEmail string `json:"clientEmail"`
	Notes       string `gorm:"type:text" json:"notes"`

	Status              RequestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RejectionReason     string        `gorm:"type:text" json:"rejectionReason,omitempty"`
	ApprovedBy          *uuid.UUID    `gorm:"type:uuid" json:"approvedBy,omitempty"`
	ApprovedAt          *time.Time    `json:"approvedAt,omitempty"`
	LinkedAppointmentID *uuid.UUID    `gorm:"type:uuid" json:"linkedAppointmentId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *AppointmentRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

func (r *AppointmentRequest) AfterFind(tx *gorm.DB) (err error) {
	r.DateTime = r.DateTime.UTC()
	r.ApprovedAt = utcPtr(r.ApprovedAt)
	return
}
