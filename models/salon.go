package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Salon struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Address      string         `json:"address"`
	Phone        string         `json:"phone"`
	Email        string         `json:"email"`
	WorkingHours datatypes.JSON `json:"workingHours"`
	IsActive     bool           `gorm:"default:true" json:"isActive"`

	Services      []Service      `gorm:"foreignKey:SalonID" json:"-"`
	Professionals []Professional `gorm:"foreignKey:SalonID" json:"-"`
	Clients       []Client       `gorm:"foreignKey:SalonID" json:"-"`
}

func (s *Salon) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
