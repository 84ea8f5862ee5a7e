package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConflictMode string

const (
	// ConflictStartExact blocks a slot only when an appointment starts in the
	// same hour. Service duration is ignored.
	ConflictStartExact ConflictMode = "start_exact"
	// ConflictIntervalOverlap blocks a slot whose [start, start+duration)
	// overlaps any appointment's own interval.
	ConflictIntervalOverlap ConflictMode = "interval_overlap"
)

type SlotPolicy struct {
	Granularity time.Duration
	Conflict    ConflictMode
	OpenHour    int
	CloseHour   int
}

func StartExactPolicy() SlotPolicy {
	return SlotPolicy{Granularity: time.Hour, Conflict: ConflictStartExact, OpenHour: 8, CloseHour: 18}
}

func IntervalOverlapPolicy() SlotPolicy {
	return SlotPolicy{Granularity: 30 * time.Minute, Conflict: ConflictIntervalOverlap, OpenHour: 8, CloseHour: 18}
}

func PolicyByName(name string) (SlotPolicy, error) {
	switch ConflictMode(strings.ToLower(strings.TrimSpace(name))) {
	case "", ConflictStartExact:
		return StartExactPolicy(), nil
	case ConflictIntervalOverlap:
		return IntervalOverlapPolicy(), nil
	}
	return SlotPolicy{}, fmt.Errorf("unknown availability policy %q", name)
}

type TimeSlot struct {
	Time             string    `json:"time"`
	DateTime         time.Time `json:"dateTime"`
	Available        bool      `json:"available"`
	ProfessionalID   uuid.UUID `json:"professionalId"`
	ProfessionalName string    `json:"professionalName"`
}

// BusyInterval is an existing appointment's occupied time.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// BlockedRange is a blocked [start, end) span in minutes since midnight.
type BlockedRange struct {
	StartMinute int
	EndMinute   int
}

// BuildSlots lays out the day's candidate slots and marks each one. It does no I/O.
// Slots are laid out on day's calendar date in UTC, the zone wall-clock values
// are stored in.
func BuildSlots(p SlotPolicy, day time.Time, serviceDuration time.Duration, busy []BusyInterval, blocked []BlockedRange) []TimeSlot {
	open := time.Date(day.Year(), day.Month(), day.Day(), p.OpenHour, 0, 0, 0, time.UTC)
	closing := time.Date(day.Year(), day.Month(), day.Day(), p.CloseHour, 0, 0, 0, time.UTC)

	var slots []TimeSlot
	for start := open; start.Before(closing); start = start.Add(p.Granularity) {
		available := true
		switch p.Conflict {
		case ConflictIntervalOverlap:
			end := start.Add(serviceDuration)
			for _, b := range busy {
				if overlaps(start, end, b.Start, b.End) {
					available = false
					break
				}
			}
		default:
			for _, b := range busy {
				if utils.TruncateToHour(b.Start).Equal(utils.TruncateToHour(start)) {
					available = false
					break
				}
			}
		}
		if available {
			minute := utils.MinuteOfDay(start)
			for _, r := range blocked {
				if minute >= r.StartMinute && minute < r.EndMinute {
					available = false
					break
				}
			}
		}
		slots = append(slots, TimeSlot{
			Time:      start.Format("15:04"),
			DateTime:  start,
			Available: available,
		})
	}
	return slots
}

type AvailabilityService struct {
	db     *gorm.DB
	policy SlotPolicy
}

func NewAvailabilityService(db *gorm.DB, policy SlotPolicy) *AvailabilityService {
	if policy.Granularity <= 0 {
		policy = StartExactPolicy()
	}
	return &AvailabilityService{db: db, policy: policy}
}

func (s *AvailabilityService) Policy() SlotPolicy {
	return s.policy
}

// Calculate returns the slot view for one professional and day. It is advisory:
// ConflictGuard re-checks at booking time.
func (s *AvailabilityService) Calculate(ctx context.Context, salonID, professionalID, serviceID uuid.UUID, date time.Time) ([]TimeSlot, error) {
	db := s.db.WithContext(ctx)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var service models.Service
	if err := db.Where("id = ? AND salon_id = ?", serviceID, salonID).First(&service).Error; err != nil {
		return nil, notFoundOr(err, "service")
	}
	var professional models.Professional
	if err := db.Where("id = ? AND salon_id = ?", professionalID, salonID).First(&professional).Error; err != nil {
		return nil, notFoundOr(err, "professional")
	}

	dayStart, dayEnd := utils.DayRange(day)
	from := dayStart
	if s.policy.Conflict == ConflictIntervalOverlap {
		from = dayStart.Add(-maxServiceSpan)
	}
	var appointments []models.Appointment
	err := db.Preload("Service").
		Where("salon_id = ? AND professional_id = ? AND status IN ?", salonID, professionalID, models.BlockingStatuses).
		Where("date_time >= ? AND date_time < ?", from, dayEnd).
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	busy := make([]BusyInterval, 0, len(appointments))
	for _, apt := range appointments {
		if s.policy.Conflict != ConflictIntervalOverlap && apt.DateTime.Before(dayStart) {
			continue
		}
		duration := time.Hour
		if apt.Service != nil {
			duration = apt.Service.Duration()
		}
		start := apt.DateTime.UTC()
		busy = append(busy, BusyInterval{Start: start, End: start.Add(duration)})
	}

	var blocks []models.BlockedSlot
	err = db.Where("salon_id = ? AND professional_id = ? AND date = ?", salonID, professionalID, datatypes.Date(day)).
		Find(&blocks).Error
	if err != nil {
		return nil, fmt.Errorf("load blocked slots: %w", err)
	}
	ranges := make([]BlockedRange, 0, len(blocks))
	for _, b := range blocks {
		start, err1 := utils.ParseClock(b.StartTime)
		end, err2 := utils.ParseClock(b.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		ranges = append(ranges, BlockedRange{StartMinute: start, EndMinute: end})
	}

	slots := BuildSlots(s.policy, day, service.Duration(), busy, ranges)
	for i := range slots {
		slots[i].ProfessionalID = professional.ID
		slots[i].ProfessionalName = professional.Name
	}
	return slots, nil
}
