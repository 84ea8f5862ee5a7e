package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BlockedSlot is a professional-declared unavailable range on a single day.
// StartTime and EndTime are wall-clock "HH:MM" values, end exclusive.
type BlockedSlot struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SalonID        uuid.UUID      `gorm:"type:uuid;index;not null" json:"salonId"`
	ProfessionalID uuid.UUID      `gorm:"type:uuid;index:idx_blocked_professional_date,priority:1;not null" json:"professionalId"`
	Date           datatypes.Date `gorm:"index:idx_blocked_professional_date,priority:2;not null" json:"date"`
	StartTime      string         `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime        string         `gorm:"type:varchar(5);not null" json:"endTime"`
	Reason         string         `json:"reason"`

	CreatedAt time.Time `json:"createdAt"`
}

func (b *BlockedSlot) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
