package services

import (
	"errors"
	"fmt"
	"strings"

	"salonpro-booking/models"
	"salonpro-booking/notifications"
	"salonpro-booking/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 10

type ClientInput struct {
	Name  string
	Phone string
	Email string
}

// ResolvedClient carries the plain temporary password of a newly created
// client until the credentials notification is sent.
type ResolvedClient struct {
	Client            *models.Client
	Created           bool
	TemporaryPassword string
}

type ClientResolver struct {
	dispatcher *notifications.Dispatcher
}

func NewClientResolver(dispatcher *notifications.Dispatcher) *ClientResolver {
	return &ClientResolver{dispatcher: dispatcher}
}

// Resolve finds a salon client by phone or email, or creates one. Existing
// clients are returned without re-validation.
func (r *ClientResolver) Resolve(tx *gorm.DB, salonID uuid.UUID, in ClientInput) (*ResolvedClient, error) {
	phone := utils.NormalizePhone(in.Phone)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if phone != "" || email != "" {
		query := tx.Where("salon_id = ?", salonID)
		switch {
		case phone != "" && email != "":
			query = query.Where("phone = ? OR email = ?", phone, email)
		case phone != "":
			query = query.Where("phone = ?", phone)
		default:
			query = query.Where("email = ?", email)
		}
		var existing models.Client
		err := query.Order("created_at").First(&existing).Error
		if err == nil {
			return &ResolvedClient{Client: &existing}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup client: %w", err)
		}
	}

	name := strings.TrimSpace(in.Name)
	if err := validateNewClient(name, phone, email); err != nil {
		return nil, err
	}

	password, err := utils.GenerateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash temporary password: %w", err)
	}

	client := &models.Client{
		SalonID:              salonID,
		Name:                 name,
		Phone:                phone,
		Email:                email,
		PasswordHash:         hash,
		HasTemporaryPassword: true,
		IsActive:             true,
	}
	if err := tx.Create(client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: "client was registered concurrently, please retry"}
		}
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &ResolvedClient{Client: client, Created: true, TemporaryPassword: password}, nil
}

// NotifyCredentials sends the temporary password of a newly created client.
// Call it only after the surrounding transaction committed.
func (r *ClientResolver) NotifyCredentials(rc *ResolvedClient) {
	if rc == nil || !rc.Created {
		return
	}
	r.dispatcher.Send(notifications.EventClientCredentials, notifications.Payload{
		"salonId":           rc.Client.SalonID.String(),
		"clientId":          rc.Client.ID.String(),
		"name":              rc.Client.Name,
		"phone":             rc.Client.Phone,
		"email":             rc.Client.Email,
		"temporaryPassword": rc.TemporaryPassword,
	})
}

func validateNewClient(name, phone, email string) error {
	if len(phone) < utils.MinClientPhoneDigits {
		return invalid("phone must have at least %d digits", utils.MinClientPhoneDigits)
	}
	if len([]rune(name)) < 2 {
		return invalid("name must have at least 2 characters")
	}
	if email != "" && !utils.ValidateEmail(email) {
		return invalid("invalid email address")
	}
	return nil
}
