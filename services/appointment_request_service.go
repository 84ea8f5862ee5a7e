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
	"gorm.io/gorm/clause"
)

// requestStatusCompleted is not a state a request can reach. Approval still
// checks for it; see Approve.
const requestStatusCompleted models.RequestStatus = "completed"

type ApprovalResult struct {
	Request          *models.AppointmentRequest `json:"request"`
	Appointment      *models.Appointment        `json:"appointment"`
	ConfirmationCode string                     `json:"confirmationCode"`
}

// AppointmentRequestService drives the pending -> approved|rejected|cancelled
// lifecycle of customer requests.
type AppointmentRequestService struct {
	db          *gorm.DB
	guard       *ConflictGuard
	clients     *ClientResolver
	commissions *CommissionService
	dispatcher  *notifications.Dispatcher
	logger      *zap.Logger
}

func NewAppointmentRequestService(db *gorm.DB, guard *ConflictGuard, clients *ClientResolver, commissions *CommissionService, dispatcher *notifications.Dispatcher, logger *zap.Logger) *AppointmentRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentRequestService{
		db:          db,
		guard:       guard,
		clients:     clients,
		commissions: commissions,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

func (s *AppointmentRequestService) CreateRequest(ctx context.Context, salonID uuid.UUID, in BookingInput) (*models.AppointmentRequest, error) {
	f, err := in.parse()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.ClientName)
	phone := utils.NormalizePhone(in.ClientPhone)
	email := strings.ToLower(strings.TrimSpace(in.ClientEmail))
	if err := validateNewClient(name, phone, email); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, _, err := loadServiceAndProfessional(db, salonID, f.serviceID, f.professionalID); err != nil {
		return nil, err
	}

	req := &models.AppointmentRequest{
		SalonID:        salonID,
		ServiceID:      f.serviceID,
		ProfessionalID: f.professionalID,
		DateTime:       f.dateTime,
		ClientName:     name,
		ClientPhone:    phone,
		ClientEmail:    email,
		Notes:          strings.TrimSpace(in.Notes),
		Status:         models.RequestStatusPending,
	}
	if err := db.Create(req).Error; err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.dispatcher.Send(notifications.EventRequestReceived, requestPayload(req, nil))
	return req, nil
}

// Approve turns a pending request into a confirmed appointment. The request's
// time is truncated to the hour without any timezone conversion.
func (s *AppointmentRequestService) Approve(ctx context.Context, salonID, requestID, approverID uuid.UUID) (*ApprovalResult, error) {
	db := s.db.WithContext(ctx)
	var req models.AppointmentRequest
	if err := db.Where("id = ? AND salon_id = ?", requestID, salonID).First(&req).Error; err != nil {
		return nil, notFoundOr(err, "request")
	}
	if req.Status != models.RequestStatusPending {
		return nil, invalid("request is already %s", req.Status)
	}

	service, professional, err := loadServiceAndProfessional(db, salonID, req.ServiceID, req.ProfessionalID)
	if err != nil {
		return nil, err
	}

	start := utils.TruncateToHour(req.DateTime)
	reservation := Reservation{
		SalonID:        salonID,
		ProfessionalID: professional.ID,
		Start:          start,
		Duration:       service.Duration(),
	}

	var (
		resolved *ResolvedClient
		appt     *models.Appointment
	)
	err = s.guard.WithReservation(ctx, reservation, func(tx *gorm.DB) error {
		var locked models.AppointmentRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, "id = ?", req.ID).Error; err != nil {
			return notFoundOr(err, "request")
		}
		if locked.Status != models.RequestStatusPending {
			return invalid("request is already %s", locked.Status)
		}

		rc, err := s.clients.Resolve(tx, salonID, ClientInput{Name: req.ClientName, Phone: req.ClientPhone, Email: req.ClientEmail})
		if err != nil {
			return err
		}
		resolved = rc

		appt = &models.Appointment{
			SalonID:        salonID,
			ServiceID:      service.ID,
			ProfessionalID: professional.ID,
			ClientID:       &rc.Client.ID,
			DateTime:       start,
			Status:         models.AppointmentStatusConfirmed,
			Notes:          req.Notes,
		}
		if err := tx.Create(appt).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.Model(&models.AppointmentRequest{}).Where("id = ?", req.ID).Updates(map[string]interface{}{
			"status":                models.RequestStatusApproved,
			"approved_by":           approverID,
			"approved_at":           now,
			"linked_appointment_id": appt.ID,
		}).Error; err != nil {
			return fmt.Errorf("approve request: %w", err)
		}

		// Requests never reach "completed", so this recompute does not run.
		// Left in place until it is decided whether approvals should feed commissions.
		if locked.Status == requestStatusCompleted {
			if _, err := s.commissions.recalculateTx(tx, professional, int(start.Month()), start.Year()); err != nil {
				return err
			}
		}

		req.Status = models.RequestStatusApproved
		req.ApprovedBy = &approverID
		req.ApprovedAt = &now
		req.LinkedAppointmentID = &appt.ID
		return nil
	})
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			s.logger.Info("approval conflict", zap.String("requestId", req.ID.String()), zap.Time("dateTime", start))
		}
		return nil, err
	}

	appt.Service = service
	appt.Professional = professional
	appt.Client = resolved.Client
	code := utils.ConfirmationCode(appt.ID)

	s.clients.NotifyCredentials(resolved)
	s.dispatcher.Send(notifications.EventRequestApproved, requestPayload(&req, notifications.Payload{
		"appointmentId":    appt.ID.String(),
		"confirmationCode": code,
		"dateTime":         start.Format(noteTimestampLayout),
	}))

	return &ApprovalResult{Request: &req, Appointment: appt, ConfirmationCode: code}, nil
}

func (s *AppointmentRequestService) Reject(ctx context.Context, salonID, requestID uuid.UUID, reason string, rejecterID uuid.UUID) (*models.AppointmentRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("rejection reason is required")
	}
	req, err := s.transition(ctx, salonID, requestID, models.RequestStatusRejected, map[string]interface{}{
		"rejection_reason": reason,
		"approved_by":      rejecterID,
	})
	if err != nil {
		return nil, err
	}
	req.RejectionReason = reason
	req.ApprovedBy = &rejecterID

	s.dispatcher.Send(notifications.EventRequestRejected, requestPayload(req, notifications.Payload{"reason": reason}))
	return req, nil
}

// CancelRequest lets a client withdraw its own pending request. A phone that
// does not match is reported as not found.
func (s *AppointmentRequestService) CancelRequest(ctx context.Context, salonID, requestID uuid.UUID, clientPhone string) (*models.AppointmentRequest, error) {
	phone := utils.NormalizePhone(clientPhone)
	if phone == "" {
		return nil, invalid("clientPhone is required")
	}
	var req models.AppointmentRequest
	err := s.db.WithContext(ctx).
		Where("id = ? AND salon_id = ? AND client_phone = ?", requestID, salonID, phone).
		First(&req).Error
	if err != nil {
		return nil, notFoundOr(err, "request")
	}

	updated, err := s.transition(ctx, salonID, requestID, models.RequestStatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	s.dispatcher.Send(notifications.EventRequestCancelled, requestPayload(updated, nil))
	return updated, nil
}

func (s *AppointmentRequestService) ListRequests(ctx context.Context, salonID uuid.UUID, status string) ([]models.AppointmentRequest, error) {
	query := s.db.WithContext(ctx).Where("salon_id = ?", salonID)
	if status = strings.TrimSpace(status); status != "" {
		switch models.RequestStatus(status) {
		case models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusRejected, models.RequestStatusCancelled:
			query = query.Where("status = ?", status)
		default:
			return nil, invalid("invalid status %q", status)
		}
	}
	var requests []models.AppointmentRequest
	if err := query.Order("date_time ASC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// transition moves a pending request to a terminal status. The conditional
// update makes concurrent transitions lose cleanly.
func (s *AppointmentRequestService) transition(ctx context.Context, salonID, requestID uuid.UUID, to models.RequestStatus, fields map[string]interface{}) (*models.AppointmentRequest, error) {
	var req models.AppointmentRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND salon_id = ?", requestID, salonID).First(&req).Error; err != nil {
			return notFoundOr(err, "request")
		}
		if req.Status != models.RequestStatusPending {
			return invalid("request is already %s", req.Status)
		}
		now := time.Now().UTC()
		updates := map[string]interface{}{"status": to}
		if to == models.RequestStatusRejected {
			updates["approved_at"] = now
			req.ApprovedAt = &now
		}
		for k, v := range fields {
			updates[k] = v
		}
		res := tx.Model(&models.AppointmentRequest{}).
			Where("id = ? AND status = ?", req.ID, models.RequestStatusPending).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return invalid("request is no longer pending")
		}
		req.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func requestPayload(r *models.AppointmentRequest, extra notifications.Payload) notifications.Payload {
	p := notifications.Payload{
		"salonId":        r.SalonID.String(),
		"requestId":      r.ID.String(),
		"professionalId": r.ProfessionalID.String(),
		"serviceId":      r.ServiceID.String(),
		"dateTime":       r.DateTime.Format(noteTimestampLayout),
		"status":         string(r.Status),
		"name":           r.ClientName,
		"phone":          r.ClientPhone,
		"email":          r.ClientEmail,
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}
