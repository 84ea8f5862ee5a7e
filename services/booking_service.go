package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/notifications"
	"salonpro-booking/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const noteTimestampLayout = "2006-01-02 15:04"

// BookingInput is the customer-facing booking form. DateTime is read as a
// wall-clock value; any offset is ignored.
type BookingInput struct {
	ServiceID      string `json:"serviceId"`
	ProfessionalID string `json:"professionalId"`
	DateTime       string `json:"dateTime"`
	ClientName     string `json:"clientName"`
	ClientPhone    string `json:"clientPhone"`
	ClientEmail    string `json:"clientEmail"`
	Notes          string `json:"notes"`
}

type bookingFields struct {
	serviceID      uuid.UUID
	professionalID uuid.UUID
	dateTime       time.Time
}

func (in BookingInput) parse() (bookingFields, error) {
	var f bookingFields
	var err error
	if f.serviceID, err = parseID(strings.TrimSpace(in.ServiceID), "serviceId"); err != nil {
		return f, err
	}
	if f.professionalID, err = parseID(strings.TrimSpace(in.ProfessionalID), "professionalId"); err != nil {
		return f, err
	}
	if strings.TrimSpace(in.DateTime) == "" {
		return f, invalid("dateTime is required")
	}
	if f.dateTime, err = utils.ParseWallClock(in.DateTime); err != nil {
		return f, invalid("invalid dateTime")
	}
	if strings.TrimSpace(in.ClientPhone) == "" {
		return f, invalid("clientPhone is required")
	}
	return f, nil
}

// AppointmentView is an appointment annotated with its confirmation code.
type AppointmentView struct {
	models.Appointment
	ConfirmationCode string `json:"confirmationCode"`
}

func newAppointmentView(a models.Appointment) AppointmentView {
	return AppointmentView{Appointment: a, ConfirmationCode: utils.ConfirmationCode(a.ID)}
}

type BookingResult struct {
	Appointment      *models.Appointment `json:"appointment"`
	ConfirmationCode string              `json:"confirmationCode"`
	ClientCreated    bool                `json:"clientCreated"`
}

type BookingService struct {
	db          *gorm.DB
	guard       *ConflictGuard
	clients     *ClientResolver
	commissions *CommissionService
	dispatcher  *notifications.Dispatcher
	logger      *zap.Logger
}

func NewBookingService(db *gorm.DB, guard *ConflictGuard, clients *ClientResolver, commissions *CommissionService, dispatcher *notifications.Dispatcher, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		db:          db,
		guard:       guard,
		clients:     clients,
		commissions: commissions,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Create books a confirmed appointment. Client resolution and the insert share
// one transaction, so a conflict leaves no rows behind.
func (s *BookingService) Create(ctx context.Context, salonID uuid.UUID, in BookingInput) (*BookingResult, error) {
	f, err := in.parse()
	if err != nil {
		return nil, err
	}
	service, professional, err := loadServiceAndProfessional(s.db.WithContext(ctx), salonID, f.serviceID, f.professionalID)
	if err != nil {
		return nil, err
	}

	var (
		resolved *ResolvedClient
		appt     *models.Appointment
	)
	reservation := Reservation{
		SalonID:        salonID,
		ProfessionalID: professional.ID,
		Start:          f.dateTime,
		Duration:       service.Duration(),
	}
	err = s.guard.WithReservation(ctx, reservation, func(tx *gorm.DB) error {
		rc, err := s.clients.Resolve(tx, salonID, ClientInput{Name: in.ClientName, Phone: in.ClientPhone, Email: in.ClientEmail})
		if err != nil {
			return err
		}
		resolved = rc
		appt = &models.Appointment{
			SalonID:        salonID,
			ServiceID:      service.ID,
			ProfessionalID: professional.ID,
			ClientID:       &rc.Client.ID,
			DateTime:       f.dateTime,
			Status:         models.AppointmentStatusConfirmed,
			Notes:          strings.TrimSpace(in.Notes),
		}
		return tx.Create(appt).Error
	})
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			s.logger.Info("booking conflict",
				zap.String("salonId", salonID.String()),
				zap.String("professionalId", professional.ID.String()),
				zap.Time("dateTime", f.dateTime))
		}
		return nil, err
	}

	appt.Service = service
	appt.Professional = professional
	appt.Client = resolved.Client
	code := utils.ConfirmationCode(appt.ID)

	s.clients.NotifyCredentials(resolved)
	s.dispatcher.Send(notifications.EventBookingConfirmed, appointmentPayload(appt, notifications.Payload{
		"confirmationCode": code,
	}))

	return &BookingResult{Appointment: appt, ConfirmationCode: code, ClientCreated: resolved.Created}, nil
}

// Cancel frees the appointment's slot and appends an audit line to its notes.
func (s *BookingService) Cancel(ctx context.Context, salonID, appointmentID uuid.UUID, reason string) (*models.Appointment, error) {
	reason = strings.TrimSpace(reason)
	var appt models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Service").Preload("Professional").Preload("Client").
			Where("id = ? AND salon_id = ?", appointmentID, salonID).
			First(&appt).Error; err != nil {
			return notFoundOr(err, "appointment")
		}
		switch appt.Status {
		case models.AppointmentStatusCancelled:
			return invalid("appointment is already cancelled")
		case models.AppointmentStatusCompleted:
			return invalid("completed appointments cannot be cancelled")
		}

		now := time.Now().UTC()
		line := fmt.Sprintf("[%s] Cancelled", now.Format(noteTimestampLayout))
		if reason != "" {
			line += ": " + reason
		}
		notes := line
		if appt.Notes != "" {
			notes = appt.Notes + "\n" + line
		}

		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, appt.Status).
			Updates(map[string]interface{}{
				"status":              models.AppointmentStatusCancelled,
				"cancellation_reason": reason,
				"cancelled_at":        now,
				"notes":               notes,
			})
		if res.Error != nil {
			return fmt.Errorf("cancel appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return invalid("appointment changed, reload and retry")
		}
		appt.Status = models.AppointmentStatusCancelled
		appt.CancellationReason = reason
		appt.CancelledAt = &now
		appt.Notes = notes
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Send(notifications.EventAppointmentCancelled, appointmentPayload(&appt, notifications.Payload{
		"reason": reason,
	}))
	return &appt, nil
}

// Complete marks a confirmed appointment as done and refreshes the
// professional's commission for that month in the same transaction.
func (s *BookingService) Complete(ctx context.Context, salonID, appointmentID uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.WithContext(ctx).Where("id = ? AND salon_id = ?", appointmentID, salonID).First(&appt).Error; err != nil {
		return nil, notFoundOr(err, "appointment")
	}
	if appt.Status != models.AppointmentStatusConfirmed {
		return nil, invalid("only confirmed appointments can be completed")
	}

	month, year := int(appt.DateTime.Month()), appt.DateTime.Year()
	err := s.commissions.withLock(ctx, appt.ProfessionalID, month, year, func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, models.AppointmentStatusConfirmed).
			Updates(map[string]interface{}{
				"status":       models.AppointmentStatusCompleted,
				"completed_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("complete appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return invalid("only confirmed appointments can be completed")
		}
		appt.Status = models.AppointmentStatusCompleted
		appt.CompletedAt = &now

		var professional models.Professional
		if err := tx.First(&professional, "id = ?", appt.ProfessionalID).Error; err != nil {
			return notFoundOr(err, "professional")
		}
		_, err := s.commissions.recalculateTx(tx, &professional, month, year)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListByClientPhone returns the appointments of every salon client with that
// phone, oldest first.
func (s *BookingService) ListByClientPhone(ctx context.Context, salonID uuid.UUID, phone string) ([]AppointmentView, error) {
	phone = utils.NormalizePhone(phone)
	if phone == "" {
		return nil, invalid("clientPhone is required")
	}
	db := s.db.WithContext(ctx)

	var appointments []models.Appointment
	err := db.Preload("Service").Preload("Professional").
		Where("salon_id = ? AND client_id IN (?)", salonID,
			db.Model(&models.Client{}).Select("id").Where("salon_id = ? AND phone = ?", salonID, phone)).
		Order("date_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	views := make([]AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, newAppointmentView(a))
	}
	return views, nil
}

// GetByConfirmationCode matches the code's suffix against appointment ids in
// the salon. When several ids share the suffix the latest appointment wins.
func (s *BookingService) GetByConfirmationCode(ctx context.Context, salonID uuid.UUID, code string) (*AppointmentView, error) {
	suffix, ok := utils.ParseConfirmationCode(code)
	if !ok {
		return nil, invalid("invalid confirmation code")
	}
	var appt models.Appointment
	err := s.db.WithContext(ctx).Preload("Service").Preload("Professional").
		Where("salon_id = ? AND LOWER(CAST(id AS TEXT)) LIKE ?", salonID, "%"+suffix).
		Order("date_time DESC").
		First(&appt).Error
	if err != nil {
		return nil, notFoundOr(err, "appointment")
	}
	view := newAppointmentView(appt)
	return &view, nil
}

func loadServiceAndProfessional(db *gorm.DB, salonID, serviceID, professionalID uuid.UUID) (*models.Service, *models.Professional, error) {
	var service models.Service
	if err := db.Where("id = ? AND salon_id = ? AND is_active = ?", serviceID, salonID, true).First(&service).Error; err != nil {
		return nil, nil, notFoundOr(err, "service")
	}
	var professional models.Professional
	if err := db.Where("id = ? AND salon_id = ? AND is_active = ?", professionalID, salonID, true).First(&professional).Error; err != nil {
		return nil, nil, notFoundOr(err, "professional")
	}
	return &service, &professional, nil
}

func appointmentPayload(a *models.Appointment, extra notifications.Payload) notifications.Payload {
	p := notifications.Payload{
		"salonId":        a.SalonID.String(),
		"appointmentId":  a.ID.String(),
		"professionalId": a.ProfessionalID.String(),
		"dateTime":       a.DateTime.Format(noteTimestampLayout),
		"status":         string(a.Status),
	}
	if a.Client != nil {
		p["name"] = a.Client.Name
		p["phone"] = a.Client.Phone
		p["email"] = a.Client.Email
	}
	if a.Service != nil {
		p["serviceName"] = a.Service.Name
	}
	if a.Professional != nil {
		p["professionalName"] = a.Professional.Name
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

// ListForDay is the staff agenda: every appointment of the day, optionally
// for one professional.
func (s *BookingService) ListForDay(ctx context.Context, salonID uuid.UUID, day time.Time, professionalID *uuid.UUID) ([]AppointmentView, error) {
	start, end := utils.DayRange(utils.AsWallClock(day))
	query := s.db.WithContext(ctx).Preload("Service").Preload("Professional").Preload("Client").
		Where("salon_id = ? AND date_time >= ? AND date_time < ?", salonID, start, end)
	if professionalID != nil {
		query = query.Where("professional_id = ?", *professionalID)
	}
	var appointments []models.Appointment
	if err := query.Order("date_time ASC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	views := make([]AppointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, newAppointmentView(a))
	}
	return views, nil
}
