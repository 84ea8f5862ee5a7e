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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var hundred = decimal.NewFromInt(100)

type PaymentInput struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Notes  string          `json:"notes"`
}

// CommissionService keeps MonthlyCommission rows in step with completed
// appointments. Every recompute runs in one transaction under a
// per-(professional, month) lock.
type CommissionService struct {
	db     *gorm.DB
	locker Locker
	logger *zap.Logger
	now    func() time.Time
}

func NewCommissionService(db *gorm.DB, locker Locker, logger *zap.Logger) *CommissionService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommissionService{
		db:     db,
		locker: locker,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return invalid("month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return invalid("invalid year")
	}
	return nil
}

func (s *CommissionService) withLock(ctx context.Context, professionalID uuid.UUID, month, year int, fn func(tx *gorm.DB) error) error {
	unlock, err := s.locker.Lock(ctx, commissionLockKey(professionalID, month, year))
	if err != nil {
		return fmt.Errorf("lock commission: %w", err)
	}
	defer unlock()
	return s.db.WithContext(ctx).Transaction(fn)
}

// Recalculate rebuilds the professional's commission for the month. When
// salonID is not uuid.Nil the professional must belong to that salon.
func (s *CommissionService) Recalculate(ctx context.Context, salonID, professionalID uuid.UUID, month, year int) (*models.MonthlyCommission, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Where("id = ?", professionalID)
	if salonID != uuid.Nil {
		query = query.Where("salon_id = ?", salonID)
	}
	var professional models.Professional
	if err := query.First(&professional).Error; err != nil {
		return nil, notFoundOr(err, "professional")
	}

	var result *models.MonthlyCommission
	err := s.withLock(ctx, professional.ID, month, year, func(tx *gorm.DB) error {
		mc, err := s.recalculateTx(tx, &professional, month, year)
		result = mc
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("commission recalculated",
		zap.String("professionalId", professional.ID.String()),
		zap.Int("month", month), zap.Int("year", year),
		zap.String("commissionTotal", result.CommissionTotal.StringFixed(2)))
	return result, nil
}

// recalculateTx must run inside a transaction holding the commission lock.
func (s *CommissionService) recalculateTx(tx *gorm.DB, professional *models.Professional, month, year int) (*models.MonthlyCommission, error) {
	start, end := utils.MonthRange(year, month)

	var appointments []models.Appointment
	err := tx.Preload("Service").
		Where("professional_id = ? AND salon_id = ? AND status = ?", professional.ID, professional.SalonID, models.AppointmentStatusCompleted).
		Where("date_time >= ? AND date_time < ?", start, end).
		Order("date_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("load completed appointments: %w", err)
	}

	pct := professional.CommissionPercent
	revenue := decimal.Zero
	details := make([]models.CommissionDetail, 0, len(appointments))
	for _, apt := range appointments {
		price := decimal.Zero
		if apt.Service != nil {
			price = apt.Service.Price
		}
		revenue = revenue.Add(price)
		details = append(details, models.CommissionDetail{
			AppointmentID:    apt.ID,
			ServiceRevenue:   price,
			BaseAmount:       price,
			CommissionAmount: price.Mul(pct).Div(hundred).Round(2),
		})
	}

	var mc models.MonthlyCommission
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("professional_id = ? AND month = ? AND year = ?", professional.ID, month, year).
		First(&mc).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return nil, fmt.Errorf("load monthly commission: %w", err)
	}
	if isNew {
		mc = models.MonthlyCommission{
			SalonID:        professional.SalonID,
			ProfessionalID: professional.ID,
			Month:          month,
			Year:           year,
			AmountPaid:     decimal.Zero,
		}
	}

	mc.TotalAppointments = len(appointments)
	mc.TotalRevenue = revenue.Round(2)
	mc.CommissionPercent = pct
	mc.CommissionTotal = revenue.Mul(pct).Div(hundred).Round(2)
	mc.LastCalculatedAt = s.now()
	mc.Settle()

	if isNew {
		err = tx.Create(&mc).Error
	} else {
		err = tx.Omit(clause.Associations).Save(&mc).Error
	}
	if err != nil {
		return nil, fmt.Errorf("save monthly commission: %w", err)
	}

	if err := tx.Where("monthly_commission_id = ?", mc.ID).Delete(&models.CommissionDetail{}).Error; err != nil {
		return nil, fmt.Errorf("clear commission details: %w", err)
	}
	for i := range details {
		details[i].MonthlyCommissionID = mc.ID
	}
	if len(details) > 0 {
		if err := tx.Create(&details).Error; err != nil {
			return nil, fmt.Errorf("create commission details: %w", err)
		}
	}
	mc.Details = details
	return &mc, nil
}

// RegisterPayment adds to amountPaid and re-derives balance and status.
// Detail rows are left alone.
func (s *CommissionService) RegisterPayment(ctx context.Context, salonID, commissionID uuid.UUID, in PaymentInput) (*models.MonthlyCommission, error) {
	if !in.Amount.IsPositive() {
		return nil, invalid("amount must be greater than zero")
	}
	var current models.MonthlyCommission
	if err := s.db.WithContext(ctx).Where("id = ? AND salon_id = ?", commissionID, salonID).First(&current).Error; err != nil {
		return nil, notFoundOr(err, "commission")
	}

	var mc models.MonthlyCommission
	err := s.withLock(ctx, current.ProfessionalID, current.Month, current.Year, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&mc, "id = ?", current.ID).Error; err != nil {
			return notFoundOr(err, "commission")
		}
		mc.AmountPaid = mc.AmountPaid.Add(in.Amount.Round(2))
		mc.Settle()
		res := tx.Model(&models.MonthlyCommission{}).Where("id = ?", mc.ID).Updates(map[string]interface{}{
			"amount_paid": mc.AmountPaid,
			"balance_due": mc.BalanceDue,
			"status":      mc.Status,
		})
		if res.Error != nil {
			return fmt.Errorf("update commission: %w", res.Error)
		}
		payment := models.CommissionPayment{
			MonthlyCommissionID: mc.ID,
			Amount:              in.Amount.Round(2),
			Method:              strings.TrimSpace(in.Method),
			Notes:               strings.TrimSpace(in.Notes),
			PaidAt:              s.now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		return tx.Where("monthly_commission_id = ?", mc.ID).Order("paid_at ASC").Find(&mc.Payments).Error
	})
	if err != nil {
		return nil, err
	}
	return &mc, nil
}

func (s *CommissionService) Get(ctx context.Context, salonID, commissionID uuid.UUID) (*models.MonthlyCommission, error) {
	var mc models.MonthlyCommission
	err := s.db.WithContext(ctx).
		Preload("Details").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		Where("id = ? AND salon_id = ?", commissionID, salonID).
		First(&mc).Error
	if err != nil {
		return nil, notFoundOr(err, "commission")
	}
	return &mc, nil
}

func (s *CommissionService) ListForSalon(ctx context.Context, salonID uuid.UUID, month, year int) ([]models.MonthlyCommission, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	var rows []models.MonthlyCommission
	err := s.db.WithContext(ctx).
		Where("salon_id = ? AND month = ? AND year = ?", salonID, month, year).
		Order("commission_total DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	return rows, nil
}
