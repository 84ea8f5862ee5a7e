package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlockedSlotInput struct {
	ProfessionalID string `json:"professionalId"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Reason         string `json:"reason"`
}

// Catalog serves the salon's public profile and manages blocked ranges.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) GetSalon(ctx context.Context, salonID uuid.UUID) (*models.Salon, error) {
	var salon models.Salon
	if err := c.db.WithContext(ctx).Where("id = ? AND is_active = ?", salonID, true).First(&salon).Error; err != nil {
		return nil, notFoundOr(err, "salon")
	}
	return &salon, nil
}

func (c *Catalog) ListServices(ctx context.Context, salonID uuid.UUID) ([]models.Service, error) {
	if _, err := c.GetSalon(ctx, salonID); err != nil {
		return nil, err
	}
	var services []models.Service
	err := c.db.WithContext(ctx).
		Where("salon_id = ? AND is_active = ?", salonID, true).
		Order("category ASC, name ASC").
		Find(&services).Error
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

func (c *Catalog) ListProfessionals(ctx context.Context, salonID uuid.UUID) ([]models.Professional, error) {
	if _, err := c.GetSalon(ctx, salonID); err != nil {
		return nil, err
	}
	var professionals []models.Professional
	err := c.db.WithContext(ctx).
		Where("salon_id = ? AND is_active = ?", salonID, true).
		Order("name ASC").
		Find(&professionals).Error
	if err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	return professionals, nil
}

func (c *Catalog) CreateBlockedSlot(ctx context.Context, salonID uuid.UUID, in BlockedSlotInput) (*models.BlockedSlot, error) {
	professionalID, err := parseID(strings.TrimSpace(in.ProfessionalID), "professionalId")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Date) == "" {
		return nil, invalid("date is required")
	}
	date, err := utils.ParseDate(in.Date)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	start, err := utils.ParseClock(in.StartTime)
	if err != nil {
		return nil, invalid("invalid startTime, expected HH:MM")
	}
	end, err := utils.ParseClock(in.EndTime)
	if err != nil {
		return nil, invalid("invalid endTime, expected HH:MM")
	}
	if start >= end {
		return nil, invalid("startTime must be before endTime")
	}

	db := c.db.WithContext(ctx)
	var professional models.Professional
	if err := db.Where("id = ? AND salon_id = ?", professionalID, salonID).First(&professional).Error; err != nil {
		return nil, notFoundOr(err, "professional")
	}

	block := &models.BlockedSlot{
		SalonID:        salonID,
		ProfessionalID: professional.ID,
		Date:           datatypes.Date(date),
		StartTime:      utils.FormatClock(start),
		EndTime:        utils.FormatClock(end),
		Reason:         strings.TrimSpace(in.Reason),
	}
	if err := db.Create(block).Error; err != nil {
		return nil, fmt.Errorf("create blocked slot: %w", err)
	}
	return block, nil
}

// ListBlockedSlots filters by professional and/or date when given.
func (c *Catalog) ListBlockedSlots(ctx context.Context, salonID uuid.UUID, professionalID *uuid.UUID, date *time.Time) ([]models.BlockedSlot, error) {
	query := c.db.WithContext(ctx).Where("salon_id = ?", salonID)
	if professionalID != nil {
		query = query.Where("professional_id = ?", *professionalID)
	}
	if date != nil {
		query = query.Where("date = ?", datatypes.Date(*date))
	}
	var blocks []models.BlockedSlot
	if err := query.Order("date ASC, start_time ASC").Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("list blocked slots: %w", err)
	}
	return blocks, nil
}

func (c *Catalog) DeleteBlockedSlot(ctx context.Context, salonID, id uuid.UUID) error {
	res := c.db.WithContext(ctx).Where("id = ? AND salon_id = ?", id, salonID).Delete(&models.BlockedSlot{})
	if res.Error != nil {
		return fmt.Errorf("delete blocked slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("blocked slot")
	}
	return nil
}

type ServiceInput struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	DurationMinutes *int             `json:"durationMinutes"`
	Category        *string          `json:"category"`
	IsActive        *bool            `json:"isActive"`
}

type ProfessionalInput struct {
	Name              *string          `json:"name"`
	Phone             *string          `json:"phone"`
	Email             *string          `json:"email"`
	CommissionPercent *decimal.Decimal `json:"commissionPercent"`
	IsActive          *bool            `json:"isActive"`
}

type SalonProfileInput struct {
	Name         *string         `json:"name"`
	Address      *string         `json:"address"`
	Phone        *string         `json:"phone"`
	Email        *string         `json:"email"`
	WorkingHours *datatypes.JSON `json:"workingHours"`
}

// AllServices includes inactive ones, for staff screens.
func (c *Catalog) AllServices(ctx context.Context, salonID uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	if err := c.db.WithContext(ctx).Where("salon_id = ?", salonID).Order("name ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

func (c *Catalog) GetService(ctx context.Context, salonID, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := c.db.WithContext(ctx).Where("salon_id = ? AND id = ?", salonID, id).First(&service).Error; err != nil {
		return nil, notFoundOr(err, "service")
	}
	return &service, nil
}

func (c *Catalog) CreateService(ctx context.Context, salonID uuid.UUID, in ServiceInput) (*models.Service, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("name is required")
	}
	if in.Price == nil {
		return nil, invalid("price is required")
	}
	service := &models.Service{SalonID: salonID, DurationMinutes: 60, Category: "General", IsActive: true}
	if err := applyServiceInput(service, in); err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Create(service).Error; err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return service, nil
}

func (c *Catalog) UpdateService(ctx context.Context, salonID, id uuid.UUID, in ServiceInput) (*models.Service, error) {
	service, err := c.GetService(ctx, salonID, id)
	if err != nil {
		return nil, err
	}
	if err := applyServiceInput(service, in); err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Save(service).Error; err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return service, nil
}

// DeactivateService hides a service from booking. Rows stay because
// appointments and commissions read its price and duration.
func (c *Catalog) DeactivateService(ctx context.Context, salonID, id uuid.UUID) error {
	res := c.db.WithContext(ctx).Model(&models.Service{}).
		Where("salon_id = ? AND id = ?", salonID, id).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate service: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("service")
	}
	return nil
}

func applyServiceInput(s *models.Service, in ServiceInput) error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return invalid("name cannot be empty")
		}
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return invalid("price cannot be negative")
		}
		s.Price = in.Price.Round(2)
	}
	if in.DurationMinutes != nil {
		if *in.DurationMinutes <= 0 {
			return invalid("durationMinutes must be positive")
		}
		s.DurationMinutes = *in.DurationMinutes
	}
	if in.Category != nil {
		s.Category = *in.Category
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	return nil
}

func (c *Catalog) AllProfessionals(ctx context.Context, salonID uuid.UUID) ([]models.Professional, error) {
	var professionals []models.Professional
	if err := c.db.WithContext(ctx).Where("salon_id = ?", salonID).Order("name ASC").Find(&professionals).Error; err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	return professionals, nil
}

func (c *Catalog) CreateProfessional(ctx context.Context, salonID uuid.UUID, in ProfessionalInput) (*models.Professional, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("name is required")
	}
	professional := &models.Professional{SalonID: salonID, IsActive: true}
	if err := applyProfessionalInput(professional, in); err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Create(professional).Error; err != nil {
		return nil, fmt.Errorf("create professional: %w", err)
	}
	return professional, nil
}

// UpdateProfessional changes future commission recomputes only; stored
// months keep their percent until recalculated.
func (c *Catalog) UpdateProfessional(ctx context.Context, salonID, id uuid.UUID, in ProfessionalInput) (*models.Professional, error) {
	var professional models.Professional
	if err := c.db.WithContext(ctx).Where("salon_id = ? AND id = ?", salonID, id).First(&professional).Error; err != nil {
		return nil, notFoundOr(err, "professional")
	}
	if err := applyProfessionalInput(&professional, in); err != nil {
		return nil, err
	}
	if err := c.db.WithContext(ctx).Save(&professional).Error; err != nil {
		return nil, fmt.Errorf("update professional: %w", err)
	}
	return &professional, nil
}

func applyProfessionalInput(p *models.Professional, in ProfessionalInput) error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return invalid("name cannot be empty")
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		if *in.Phone != "" && !utils.ValidatePhone(*in.Phone) {
			return invalid("invalid phone number")
		}
		p.Phone = utils.NormalizePhone(*in.Phone)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != "" && !utils.ValidateEmail(email) {
			return invalid("invalid email address")
		}
		p.Email = email
	}
	if in.CommissionPercent != nil {
		pct := *in.CommissionPercent
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return invalid("commissionPercent must be between 0 and 100")
		}
		p.CommissionPercent = pct.Round(2)
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}

func (c *Catalog) UpdateSalon(ctx context.Context, salonID uuid.UUID, in SalonProfileInput) (*models.Salon, error) {
	salon, err := c.GetSalon(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, invalid("name cannot be empty")
		}
		salon.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		salon.Address = *in.Address
	}
	if in.Phone != nil {
		if *in.Phone != "" && !utils.ValidatePhone(*in.Phone) {
			return nil, invalid("invalid phone number")
		}
		salon.Phone = *in.Phone
	}
	if in.Email != nil {
		if *in.Email != "" && !utils.ValidateEmail(*in.Email) {
			return nil, invalid("invalid email address")
		}
		salon.Email = *in.Email
	}
	if in.WorkingHours != nil {
		salon.WorkingHours = *in.WorkingHours
	}
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Save(salon).Error; err != nil {
		return nil, fmt.Errorf("update salon: %w", err)
	}
	return salon, nil
}

// SearchClients lists salon clients, optionally filtered by a phone fragment.
func (c *Catalog) SearchClients(ctx context.Context, salonID uuid.UUID, phone string) ([]models.Client, error) {
	query := c.db.WithContext(ctx).Where("salon_id = ?", salonID)
	if digits := utils.NormalizePhone(phone); digits != "" {
		query = query.Where("phone LIKE ?", "%"+digits+"%")
	}
	var clients []models.Client
	if err := query.Order("name ASC").Limit(200).Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (c *Catalog) GetClient(ctx context.Context, salonID, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := c.db.WithContext(ctx).Where("salon_id = ? AND id = ?", salonID, id).First(&client).Error; err != nil {
		return nil, notFoundOr(err, "client")
	}
	return &client, nil
}
