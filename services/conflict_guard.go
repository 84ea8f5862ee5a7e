package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxServiceSpan bounds how far back an earlier appointment can still overlap.
const maxServiceSpan = 24 * time.Hour

// Reservation is a requested occupancy of a professional's time.
type Reservation struct {
	SalonID        uuid.UUID
	ProfessionalID uuid.UUID
	Start          time.Time
	Duration       time.Duration
}

func (r Reservation) End() time.Time {
	return r.Start.Add(r.Duration)
}

// lockKeys covers every calendar day the reservation touches, in order.
func (r Reservation) lockKeys() []string {
	var keys []string
	last := utils.BeginningOfDay(r.End().Add(-time.Nanosecond))
	for day := utils.BeginningOfDay(r.Start); !day.After(last); day = day.AddDate(0, 0, 1) {
		keys = append(keys, bookingLockKey(r.ProfessionalID, day))
	}
	if len(keys) == 0 {
		keys = append(keys, bookingLockKey(r.ProfessionalID, r.Start))
	}
	sort.Strings(keys)
	return keys
}

type ConflictGuard struct {
	db     *gorm.DB
	locker Locker
	policy SlotPolicy
}

// NewConflictGuard enforces the same business hours as the availability
// policy, so a direct request cannot take a slot the slot view never offers.
func NewConflictGuard(db *gorm.DB, locker Locker, policy SlotPolicy) *ConflictGuard {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if policy.CloseHour <= policy.OpenHour {
		policy = StartExactPolicy()
	}
	return &ConflictGuard{db: db, locker: locker, policy: policy}
}

// CheckSchedule rejects a start outside business hours or inside one of the
// professional's blocked ranges for that day.
func (g *ConflictGuard) CheckSchedule(tx *gorm.DB, r Reservation) error {
	start := r.Start.UTC()
	minute := utils.MinuteOfDay(start)
	if minute < g.policy.OpenHour*60 || minute >= g.policy.CloseHour*60 {
		return invalid("dateTime must be between %s and %s",
			utils.FormatClock(g.policy.OpenHour*60), utils.FormatClock(g.policy.CloseHour*60))
	}

	var blocks []models.BlockedSlot
	err := tx.Where("salon_id = ? AND professional_id = ? AND date = ?",
		r.SalonID, r.ProfessionalID, datatypes.Date(utils.BeginningOfDay(start))).
		Find(&blocks).Error
	if err != nil {
		return fmt.Errorf("check blocked slots: %w", err)
	}
	for _, b := range blocks {
		from, err1 := utils.ParseClock(b.StartTime)
		to, err2 := utils.ParseClock(b.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if minute >= from && minute < to {
			return &ConflictError{Message: "professional is unavailable at that time"}
		}
	}
	return nil
}

// CheckConflicts returns a ConflictError listing every live appointment of the
// professional that overlaps [start, start+duration).
func (g *ConflictGuard) CheckConflicts(tx *gorm.DB, r Reservation) error {
	var existing []models.Appointment
	err := tx.Preload("Service").
		Where("salon_id = ? AND professional_id = ? AND status IN ?", r.SalonID, r.ProfessionalID, models.BlockingStatuses).
		Where("date_time > ? AND date_time < ?", r.Start.Add(-maxServiceSpan), r.End()).
		Find(&existing).Error
	if err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}

	var ids []uuid.UUID
	for _, apt := range existing {
		duration := time.Hour
		if apt.Service != nil {
			duration = apt.Service.Duration()
		}
		if overlaps(r.Start, r.End(), apt.DateTime, apt.DateTime.Add(duration)) {
			ids = append(ids, apt.ID)
		}
	}
	if len(ids) > 0 {
		return &ConflictError{Message: "time slot is no longer available", AppointmentIDs: ids}
	}
	return nil
}

// WithReservation holds the professional's day lock, re-checks the schedule
// and existing appointments, then runs fn inside the same transaction. fn
// performs the insert.
func (g *ConflictGuard) WithReservation(ctx context.Context, r Reservation, fn func(tx *gorm.DB) error) error {
	var unlocks []func()
	defer func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}()
	for _, key := range r.lockKeys() {
		unlock, err := g.locker.Lock(ctx, key)
		if err != nil {
			return fmt.Errorf("reserve slot: %w", err)
		}
		unlocks = append(unlocks, unlock)
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := g.CheckSchedule(tx, r); err != nil {
			return err
		}
		if err := g.CheckConflicts(tx, r); err != nil {
			return err
		}
		return fn(tx)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Message: "time slot is no longer available"}
	}
	return err
}

// TryReserve inserts appt if its slot is still free.
func (g *ConflictGuard) TryReserve(ctx context.Context, appt *models.Appointment, duration time.Duration) error {
	r := Reservation{
		SalonID:        appt.SalonID,
		ProfessionalID: appt.ProfessionalID,
		Start:          appt.DateTime,
		Duration:       duration,
	}
	return g.WithReservation(ctx, r, func(tx *gorm.DB) error {
		return tx.Create(appt).Error
	})
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
