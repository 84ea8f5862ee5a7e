package services

import (
	"errors"
	"testing"
	"time"

	"salonpro-booking/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestBuildSlotsEmptyDay(t *testing.T) {
	d := day(2025, time.March, 10)
	cases := []struct {
		name   string
		policy SlotPolicy
		want   int
	}{
		{"start exact", StartExactPolicy(), 10},
		{"interval overlap", IntervalOverlapPolicy(), 20},
	}
	for _, tc := range cases {
		slots := BuildSlots(tc.policy, d, time.Hour, nil, nil)
		if len(slots) != tc.want {
			t.Fatalf("%s: expected %d slots, got %d", tc.name, tc.want, len(slots))
		}
		for _, s := range slots {
			if !s.Available {
				t.Fatalf("%s: slot %s should be available", tc.name, s.Time)
			}
		}
		if slots[0].Time != "08:00" {
			t.Fatalf("%s: first slot %s", tc.name, slots[0].Time)
		}
	}
}

func TestBuildSlotsStartExactIgnoresDuration(t *testing.T) {
	d := day(2025, time.March, 10)
	busy := []BusyInterval{{
		Start: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
	}}
	for _, s := range BuildSlots(StartExactPolicy(), d, time.Hour, busy, nil) {
		want := s.Time != "10:00"
		if s.Available != want {
			t.Fatalf("slot %s: expected available=%v", s.Time, want)
		}
	}
}

func TestBuildSlotsIntervalOverlap(t *testing.T) {
	d := day(2025, time.March, 10)
	busy := []BusyInterval{{
		Start: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC),
	}}
	slots := BuildSlots(IntervalOverlapPolicy(), d, 30*time.Minute, busy, nil)
	want := map[string]bool{
		"09:30": true,
		"10:00": false,
		"10:30": false,
		"11:00": false,
		"11:30": true,
	}
	for _, s := range slots {
		if expected, ok := want[s.Time]; ok && s.Available != expected {
			t.Fatalf("slot %s: expected available=%v", s.Time, expected)
		}
	}
}

func TestBuildSlotsIntervalOverlapUsesRequestedDuration(t *testing.T) {
	d := day(2025, time.March, 10)
	busy := []BusyInterval{{
		Start: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
	}}
	for _, s := range BuildSlots(IntervalOverlapPolicy(), d, time.Hour, busy, nil) {
		if s.Time == "09:30" && s.Available {
			t.Fatalf("a 60 minute slot at 09:30 runs into the 10:00 appointment")
		}
		if s.Time == "09:00" && !s.Available {
			t.Fatalf("09:00 ends exactly when the appointment starts")
		}
	}
}

func TestBuildSlotsIgnoresZoneOfInputs(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC).In(ist)
	busy := []BusyInterval{{Start: start, End: start.Add(time.Hour)}}
	d := time.Date(2025, 3, 10, 0, 0, 0, 0, ist)
	for _, s := range BuildSlots(StartExactPolicy(), d, time.Hour, busy, nil) {
		want := s.Time != "10:00"
		if s.Available != want {
			t.Fatalf("slot %s: expected available=%v", s.Time, want)
		}
		if s.DateTime.Location() != time.UTC {
			t.Fatalf("slot %s not in UTC", s.Time)
		}
	}
}

func TestBuildSlotsBlockedRangeIsHalfOpen(t *testing.T) {
	d := day(2025, time.March, 10)
	blocked := []BlockedRange{{StartMinute: 10 * 60, EndMinute: 12 * 60}}
	for _, s := range BuildSlots(StartExactPolicy(), d, time.Hour, nil, blocked) {
		switch s.Time {
		case "10:00", "11:00":
			if s.Available {
				t.Fatalf("slot %s should be blocked", s.Time)
			}
		default:
			if !s.Available {
				t.Fatalf("slot %s should be available", s.Time)
			}
		}
	}
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("interval_overlap")
	if err != nil || p.Granularity != 30*time.Minute {
		t.Fatalf("unexpected policy %+v (%v)", p, err)
	}
	if _, err := PolicyByName("fortnightly"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestCalculateRejectsForeignService(t *testing.T) {
	f := newFixture(t)
	_, err := f.availability.Calculate(ctxT(t), f.salon.ID, f.professional.ID, uuid.New(), day(2025, time.March, 10))
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Resource != "service" {
		t.Fatalf("expected service not found, got %v", err)
	}

	other := models.Salon{Name: "Other", IsActive: true}
	mustCreate(t, f.db, &other)
	_, err = f.availability.Calculate(ctxT(t), other.ID, f.professional.ID, f.service.ID, day(2025, time.March, 10))
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found across salons, got %v", err)
	}
}

func TestCalculateReflectsBookingsAndBlocks(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2025-03-10T10:00")
	mustCreate(t, f.db, &models.BlockedSlot{
		SalonID:        f.salon.ID,
		ProfessionalID: f.professional.ID,
		Date:           datatypes.Date(day(2025, time.March, 10)),
		StartTime:      "14:00",
		EndTime:        "16:00",
	})

	slots, err := f.availability.Calculate(ctxT(t), f.salon.ID, f.professional.ID, f.service.ID, day(2025, time.March, 10))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(slots))
	}
	unavailable := map[string]bool{"10:00": true, "14:00": true, "15:00": true}
	for _, s := range slots {
		if s.Available == unavailable[s.Time] {
			t.Fatalf("slot %s: unexpected available=%v", s.Time, s.Available)
		}
		if s.ProfessionalName != "Carla" {
			t.Fatalf("slot missing professional name")
		}
	}
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "2025-03-10T10:00")

	if _, err := f.bookings.Cancel(ctxT(t), f.salon.ID, appt.ID, "client asked"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	slots, err := f.availability.Calculate(ctxT(t), f.salon.ID, f.professional.ID, f.service.ID, day(2025, time.March, 10))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	for _, s := range slots {
		if s.Time == "10:00" && !s.Available {
			t.Fatalf("cancelled slot should be available again")
		}
	}
}

func TestCalculateIntervalOverlapFromDB(t *testing.T) {
	f := newFixture(t)
	in := f.input("2025-03-10T10:00", "11987654321")
	in.ServiceID = f.longService.ID.String()
	if _, err := f.bookings.Create(ctxT(t), f.salon.ID, in); err != nil {
		t.Fatalf("book: %v", err)
	}

	calc := NewAvailabilityService(f.db, IntervalOverlapPolicy())
	shortService := models.Service{SalonID: f.salon.ID, Name: "Fringe", DurationMinutes: 30, IsActive: true}
	mustCreate(t, f.db, &shortService)

	slots, err := calc.Calculate(ctxT(t), f.salon.ID, f.professional.ID, shortService.ID, day(2025, time.March, 10))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(slots) != 20 {
		t.Fatalf("expected 20 slots, got %d", len(slots))
	}
	for _, s := range slots {
		switch s.Time {
		case "10:00", "10:30", "11:00":
			if s.Available {
				t.Fatalf("slot %s should be taken by the 90 minute service", s.Time)
			}
		case "11:30":
			if !s.Available {
				t.Fatalf("11:30 should be free")
			}
		}
	}
}
