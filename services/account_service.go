package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

var defaultWorkingHours = datatypes.JSON(`{
	"monday":    {"open": "09:00", "close": "20:00", "closed": false},
	"tuesday":   {"open": "09:00", "close": "20:00", "closed": false},
	"wednesday": {"open": "09:00", "close": "20:00", "closed": false},
	"thursday":  {"open": "09:00", "close": "20:00", "closed": false},
	"friday":    {"open": "09:00", "close": "20:00", "closed": false},
	"saturday":  {"open": "09:00", "close": "21:00", "closed": false},
	"sunday":    {"open": "10:00", "close": "19:00", "closed": true}
}`)

type RegisterInput struct {
	Email        string         `json:"email" binding:"required,email"`
	Phone        string         `json:"phone" binding:"required"`
	Name         string         `json:"name" binding:"required"`
	Password     string         `json:"password" binding:"required,min=8"`
	SalonName    string         `json:"salonName" binding:"required"`
	SalonAddress string         `json:"salonAddress"`
	WorkingHours datatypes.JSON `json:"workingHours"`
}

type StaffInput struct {
	Email          string `json:"email" binding:"required,email"`
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone"`
	Password       string `json:"password" binding:"required,min=8"`
	Role           string `json:"role" binding:"required,oneof=manager professional"`
	ProfessionalID string `json:"professionalId"`
}

// AccountService manages staff accounts. Registering creates the salon and
// its owner together.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, *models.Salon, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := utils.NormalizePhone(in.Phone)

	salon := &models.Salon{
		Name:         strings.TrimSpace(in.SalonName),
		Address:      in.SalonAddress,
		Phone:        phone,
		Email:        email,
		WorkingHours: in.WorkingHours,
		IsActive:     true,
	}
	if len(salon.WorkingHours) == 0 {
		salon.WorkingHours = defaultWorkingHours
	}
	owner := &models.User{
		Email:    email,
		Phone:    phone,
		Name:     strings.TrimSpace(in.Name),
		Password: in.Password,
		Role:     models.RoleOwner,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ? OR (phone <> '' AND phone = ?)", email, phone).Count(&count).Error; err != nil {
			return fmt.Errorf("check existing user: %w", err)
		}
		if count > 0 {
			return &ConflictError{Message: "email or phone already registered"}
		}
		if err := tx.Create(salon).Error; err != nil {
			return fmt.Errorf("create salon: %w", err)
		}
		owner.SalonID = salon.ID
		if err := tx.Create(owner).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Message: "email or phone already registered"}
			}
			return fmt.Errorf("create owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return owner, salon, nil
}

// Login accepts an email or phone as identifier.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	phone := utils.NormalizePhone(identifier)
	if phone == "" {
		phone = identifier
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("(email = ? OR phone = ?) AND is_active = ?", strings.ToLower(identifier), phone, true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", &now).Error; err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now
	return &user, nil
}

func (s *AccountService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// CreateStaff adds a manager or professional login to an existing salon.
// Professional accounts must point at one of the salon's professionals.
func (s *AccountService) CreateStaff(ctx context.Context, salonID uuid.UUID, in StaffInput) (*models.User, error) {
	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:    utils.NormalizePhone(in.Phone),
		Name:     strings.TrimSpace(in.Name),
		Password: in.Password,
		Role:     in.Role,
		SalonID:  salonID,
	}
	db := s.db.WithContext(ctx)
	if in.Role == models.RoleProfessional {
		professionalID, err := parseID(in.ProfessionalID, "professionalId")
		if err != nil {
			return nil, err
		}
		var professional models.Professional
		if err := db.Where("salon_id = ? AND id = ?", salonID, professionalID).First(&professional).Error; err != nil {
			return nil, notFoundOr(err, "professional")
		}
		user.ProfessionalID = &professional.ID
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: "email already registered"}
		}
		return nil, fmt.Errorf("create staff user: %w", err)
	}
	return user, nil
}
