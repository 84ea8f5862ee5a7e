// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/notifications"
	"salonpro-booking/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	reminderStatusSent   = "sent"
	reminderStatusFailed = "failed"
)

// ReminderService sends a reminder for every confirmed appointment of the next
// day. A ReminderLog row per (appointment, channel) keeps it from repeating.
type ReminderService struct {
	db       *gorm.DB
	notifier notifications.Notifier
	channel  string
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

func NewReminderService(db *gorm.DB, notifier notifications.Notifier, channel string, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "default"
	}
	return &ReminderService{
		db:       db,
		notifier: notifier,
		channel:  channel,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ReminderService) StartScheduler(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, s.SendDailyReminders); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("reminder scheduler started", zap.String("schedule", spec))
	return nil
}

func (s *ReminderService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *ReminderService) SendDailyReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tomorrow := utils.AsWallClock(s.now()).AddDate(0, 0, 1)
	sent, err := s.SendRemindersFor(ctx, tomorrow)
	if err != nil {
		s.logger.Error("daily reminders failed", zap.Error(err))
		return
	}
	s.logger.Info("daily reminders processed", zap.Int("sent", sent))
}

// SendRemindersFor notifies clients of confirmed appointments on day and
// returns how many reminders went out.
func (s *ReminderService) SendRemindersFor(ctx context.Context, day time.Time) (int, error) {
	return s.sendReminders(ctx, day, uuid.Nil)
}

// SendSalonReminders is SendRemindersFor limited to one salon.
func (s *ReminderService) SendSalonReminders(ctx context.Context, salonID uuid.UUID, day time.Time) (int, error) {
	return s.sendReminders(ctx, day, salonID)
}

func (s *ReminderService) sendReminders(ctx context.Context, day time.Time, salonID uuid.UUID) (int, error) {
	db := s.db.WithContext(ctx)
	start, end := utils.DayRange(utils.AsWallClock(day))

	query := db.Preload("Client").Preload("Service").Preload("Professional").
		Where("status = ? AND date_time >= ? AND date_time < ?", models.AppointmentStatusConfirmed, start, end).
		Where("NOT EXISTS (SELECT 1 FROM reminder_logs rl WHERE rl.appointment_id = appointments.id AND rl.channel = ? AND rl.status = ?)", s.channel, reminderStatusSent)
	if salonID != uuid.Nil {
		query = query.Where("salon_id = ?", salonID)
	}
	var appointments []models.Appointment
	err := query.Order("date_time ASC").Find(&appointments).Error
	if err != nil {
		return 0, fmt.Errorf("load appointments: %w", err)
	}

	sent := 0
	for i := range appointments {
		apt := &appointments[i]
		if apt.Client == nil {
			continue
		}
		payload := appointmentPayload(apt, nil)
		entry := models.ReminderLog{
			SalonID:       apt.SalonID,
			AppointmentID: apt.ID,
			Channel:       s.channel,
			Message:       notifications.SMSBody(notifications.EventAppointmentReminder, payload),
			SentAt:        time.Now().UTC(),
		}
		if err := s.notifier.Notify(ctx, notifications.EventAppointmentReminder, payload); err != nil {
			entry.Status = reminderStatusFailed
			entry.ErrorMessage = err.Error()
			s.logger.Warn("reminder failed", zap.String("appointmentId", apt.ID.String()), zap.Error(err))
		} else {
			entry.Status = reminderStatusSent
			sent++
		}
		if err := s.saveLog(db, &entry); err != nil {
			s.logger.Error("failed to log reminder", zap.String("appointmentId", apt.ID.String()), zap.Error(err))
		}
	}
	return sent, nil
}

// saveLog keeps one row per (appointment, channel); a retry overwrites a failure.
func (s *ReminderService) saveLog(db *gorm.DB, entry *models.ReminderLog) error {
	var existing models.ReminderLog
	err := db.Where("appointment_id = ? AND channel = ?", entry.AppointmentID, entry.Channel).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(entry).Error
	case err != nil:
		return err
	}
	return db.Model(&existing).Updates(map[string]interface{}{
		"status":        entry.Status,
		"error_message": entry.ErrorMessage,
		"message":       entry.Message,
		"sent_at":       entry.SentAt,
	}).Error
}

// ListLogs returns the salon's most recent reminder attempts.
func (s *ReminderService) ListLogs(ctx context.Context, salonID uuid.UUID, limit int) ([]models.ReminderLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.ReminderLog
	err := s.db.WithContext(ctx).Where("salon_id = ?", salonID).
		Order("sent_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list reminder logs: %w", err)
	}
	return logs, nil
}
