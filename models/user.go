package models

import (
	"time"

	"salonpro-booking/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleOwner        = "owner"
	RoleManager      = "manager"
	RoleProfessional = "professional"
)

// User is a staff account able to approve requests and manage commissions.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Name     string    `gorm:"not null" json:"name"`
	Phone    string    `json:"phone"`

	Role           string     `gorm:"type:varchar(20);not null" json:"role"`
	SalonID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"salonId"`
	ProfessionalID *uuid.UUID `gorm:"type:uuid" json:"professionalId,omitempty"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Password is hashed on insert; callers pass the plain value.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
