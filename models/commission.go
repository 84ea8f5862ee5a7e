package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CommissionStatus string

const (
	CommissionStatusOpen CommissionStatus = "open"
	CommissionStatusPaid CommissionStatus = "paid"
)

// MonthlyCommission is derived state; only AmountPaid is written outside a recompute.
type MonthlyCommission struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SalonID        uuid.UUID `gorm:"type:uuid;index;not null" json:"salonId"`
	ProfessionalID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_commission_period,priority:1" json:"professionalId"`
	Month          int       `gorm:"not null;uniqueIndex:idx_commission_period,priority:3" json:"month"`
	Year           int       `gorm:"not null;uniqueIndex:idx_commission_period,priority:2" json:"year"`

	TotalAppointments int              `gorm:"not null" json:"totalAppointments"`
	TotalRevenue      decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"totalRevenue"`
	CommissionPercent decimal.Decimal  `gorm:"type:decimal(5,2);not null" json:"commissionPercent"`
	CommissionTotal   decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"commissionTotal"`
	AmountPaid        decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"amountPaid"`
	BalanceDue        decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"balanceDue"`
	Status            CommissionStatus `gorm:"type:varchar(10);not null;default:'open'" json:"status"`
	LastCalculatedAt  time.Time        `json:"lastCalculatedAt"`

	Details  []CommissionDetail  `gorm:"foreignKey:MonthlyCommissionID" json:"details,omitempty"`
	Payments []CommissionPayment `gorm:"foreignKey:MonthlyCommissionID" json:"payments,omitempty"`
}

func (m *MonthlyCommission) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

// Settle re-derives BalanceDue and Status from CommissionTotal and AmountPaid.
// Paid requires a recorded payment that covers the balance; a month with a
// zero total and nothing paid stays open, on every recompute.
func (m *MonthlyCommission) Settle() {
	m.BalanceDue = m.CommissionTotal.Sub(m.AmountPaid)
	if m.AmountPaid.IsPositive() && !m.BalanceDue.IsPositive() {
		m.Status = CommissionStatusPaid
	} else {
		m.Status = CommissionStatusOpen
	}
}

type CommissionDetail struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	MonthlyCommissionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"monthlyCommissionId"`
	AppointmentID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"appointmentId"`
	ServiceRevenue      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"serviceRevenue"`
	BaseAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"baseAmount"`
	CommissionAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"commissionAmount"`
}

func (d *CommissionDetail) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

type CommissionPayment struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	MonthlyCommissionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"monthlyCommissionId"`
	Amount              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method              string          `gorm:"type:varchar(30)" json:"method"`
	Notes               string          `gorm:"type:text" json:"notes"`
	PaidAt              time.Time       `json:"paidAt"`
}

func (p *CommissionPayment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
