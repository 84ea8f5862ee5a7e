package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInvalidCommissionPercent = errors.New("commission percent must be between 0 and 100")

type Professional struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SalonID           uuid.UUID       `gorm:"type:uuid;index;not null" json:"salonId"`
	Name              string          `gorm:"not null" json:"name"`
	Phone             string          `json:"phone"`
	Email             string          `json:"email"`
	CommissionPercent decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commissionPercent"`
	IsActive          bool            `gorm:"default:true" json:"isActive"`
}

func (p *Professional) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (p *Professional) BeforeSave(tx *gorm.DB) (err error) {
	if p.CommissionPercent.IsNegative() || p.CommissionPercent.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidCommissionPercent
	}
	return
}
