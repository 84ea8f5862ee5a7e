package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SalonID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"salonId"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationMinutes int             `gorm:"not null;default:60" json:"durationMinutes"`
	Category        string          `gorm:"default:'General'" json:"category"`
	IsActive        bool            `gorm:"default:true" json:"isActive"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// Duration falls back to one hour for services saved without a length.
func (s Service) Duration() time.Duration {
	if s.DurationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.DurationMinutes) * time.Minute
}
