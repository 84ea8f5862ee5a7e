package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a salon customer. Phone holds digits only.
type Client struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_salon_client_phone,priority:1" json:"salonId"`

	Name                 string `gorm:"not null" json:"name"`
	Phone                string `gorm:"not null;uniqueIndex:idx_salon_client_phone,priority:2" json:"phone"`
	Email                string `gorm:"index" json:"email"`
	PasswordHash         string `json:"-"`
	HasTemporaryPassword bool   `gorm:"default:false" json:"hasTemporaryPassword"`
	IsActive             bool   `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
