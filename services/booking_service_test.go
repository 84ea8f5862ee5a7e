package services

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/notifications"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestCreateBookingConfirmsAndNotifies(t *testing.T) {
	f := newFixture(t)
	res, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input("2025-03-10T10:00:00-03:00", "(11) 98765-4321"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Appointment.Status != models.AppointmentStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", res.Appointment.Status)
	}
	if res.Appointment.DateTime.Hour() != 10 {
		t.Fatalf("wall clock hour changed: %v", res.Appointment.DateTime)
	}
	id := res.Appointment.ID.String()
	if res.ConfirmationCode != "BK-"+strings.ToUpper(id[len(id)-6:]) {
		t.Fatalf("unexpected confirmation code %s", res.ConfirmationCode)
	}
	if !res.ClientCreated {
		t.Fatalf("expected a new client")
	}

	f.dispatcher.Wait()
	if f.recorder.Count(notifications.EventBookingConfirmed) != 1 {
		t.Fatalf("expected a booking_confirmed notification")
	}
	if f.recorder.Count(notifications.EventClientCredentials) != 1 {
		t.Fatalf("expected a client_credentials notification")
	}

	var client models.Client
	if err := f.db.First(&client, "id = ?", *res.Appointment.ClientID).Error; err != nil {
		t.Fatalf("load client: %v", err)
	}
	if client.Phone != "11987654321" || !client.HasTemporaryPassword || client.PasswordHash == "" {
		t.Fatalf("unexpected client %+v", client)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]func(*BookingInput){
		"missing service":  func(in *BookingInput) { in.ServiceID = "" },
		"bad professional": func(in *BookingInput) { in.ProfessionalID = "not-a-uuid" },
		"missing dateTime": func(in *BookingInput) { in.DateTime = "" },
		"bad dateTime":     func(in *BookingInput) { in.DateTime = "next tuesday" },
		"missing phone":    func(in *BookingInput) { in.ClientPhone = "" },
		"short phone":      func(in *BookingInput) { in.ClientPhone = "12345" },
		"short name":       func(in *BookingInput) { in.ClientName = " A " },
		"bad email":        func(in *BookingInput) { in.ClientEmail = "maria@" },
	}
	for name, mutate := range cases {
		in := f.input("2025-03-10T10:00", "11987654321")
		mutate(&in)
		_, err := f.bookings.Create(ctxT(t), f.salon.ID, in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
	if n := f.countAppointments(t); n != 0 {
		t.Fatalf("expected no appointments, got %d", n)
	}
}

func TestCreateBookingUnknownProfessional(t *testing.T) {
	f := newFixture(t)
	in := f.input("2025-03-10T10:00", "11987654321")
	in.ProfessionalID = uuid.NewString()
	_, err := f.bookings.Create(ctxT(t), f.salon.ID, in)
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Resource != "professional" {
		t.Fatalf("expected professional not found, got %v", err)
	}
}

func TestCreateBookingConflictLeavesNoRows(t *testing.T) {
	f := newFixture(t)
	existing := f.book(t, "2025-03-10T10:00")

	var clientsBefore int64
	f.db.Model(&models.Client{}).Count(&clientsBefore)

	_, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input("2025-03-10T10:00", "21912345678"))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(conflict.AppointmentIDs) != 1 || conflict.AppointmentIDs[0] != existing.ID {
		t.Fatalf("expected conflicting id %s, got %v", existing.ID, conflict.AppointmentIDs)
	}
	if n := f.countAppointments(t); n != 1 {
		t.Fatalf("expected 1 appointment, got %d", n)
	}
	var clientsAfter int64
	f.db.Model(&models.Client{}).Count(&clientsAfter)
	if clientsAfter != clientsBefore {
		t.Fatalf("client created despite conflict")
	}
}

func TestCreateBookingOverlapsLongerService(t *testing.T) {
	f := newFixture(t)
	in := f.input("2025-03-10T10:00", "11987654321")
	in.ServiceID = f.longService.ID.String()
	if _, err := f.bookings.Create(ctxT(t), f.salon.ID, in); err != nil {
		t.Fatalf("book: %v", err)
	}

	_, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input("2025-03-10T11:00", "11987654321"))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict with 10:00-11:30, got %v", err)
	}
	if _, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input("2025-03-10T11:30", "11987654321")); err != nil {
		t.Fatalf("11:30 should be free: %v", err)
	}
}

func TestConcurrentCreateOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	const workers = 4

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input("2025-03-10T15:00", "11987654321"))
			mu.Lock()
			defer mu.Unlock()
			var conflict *ConflictError
			switch {
			case err == nil:
				successes++
			case errors.As(err, &conflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != workers-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d/%d", workers-1, successes, conflicts)
	}
	if n := f.countAppointments(t); n != 1 {
		t.Fatalf("expected exactly one appointment, got %d", n)
	}
}

func TestActiveSlotIndexRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	first := models.Appointment{SalonID: f.salon.ID, ServiceID: f.service.ID, ProfessionalID: f.professional.ID, DateTime: at, Status: models.AppointmentStatusConfirmed}
	mustCreate(t, f.db, &first)

	second := models.Appointment{SalonID: f.salon.ID, ServiceID: f.service.ID, ProfessionalID: f.professional.ID, DateTime: at, Status: models.AppointmentStatusPending}
	if err := f.db.Create(&second).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicated key, got %v", err)
	}

	if err := f.db.Model(&first).Update("status", models.AppointmentStatusCancelled).Error; err != nil {
		t.Fatalf("cancel: %v", err)
	}
	third := models.Appointment{SalonID: f.salon.ID, ServiceID: f.service.ID, ProfessionalID: f.professional.ID, DateTime: at, Status: models.AppointmentStatusConfirmed}
	if err := f.db.Create(&third).Error; err != nil {
		t.Fatalf("slot should be reusable after cancellation: %v", err)
	}
}

func TestTryReserve(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	appt := &models.Appointment{SalonID: f.salon.ID, ServiceID: f.service.ID, ProfessionalID: f.professional.ID, DateTime: at, Status: models.AppointmentStatusConfirmed}
	if err := f.guard.TryReserve(ctxT(t), appt, time.Hour); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	again := &models.Appointment{SalonID: f.salon.ID, ServiceID: f.service.ID, ProfessionalID: f.professional.ID, DateTime: at.Add(30 * time.Minute), Status: models.AppointmentStatusConfirmed}
	var conflict *ConflictError
	if err := f.guard.TryReserve(ctxT(t), again, time.Hour); !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReservationLockKeysSpanMidnight(t *testing.T) {
	r := Reservation{ProfessionalID: uuid.New(), Start: time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC), Duration: 90 * time.Minute}
	if keys := r.lockKeys(); len(keys) != 2 {
		t.Fatalf("expected two day keys, got %v", keys)
	}
	r.Start = time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	r.Duration = 2 * time.Hour
	if keys := r.lockKeys(); len(keys) != 1 {
		t.Fatalf("booking ending at midnight touches one day, got %v", keys)
	}
}

func TestCancelAppendsAuditLine(t *testing.T) {
	f := newFixture(t)
	in := f.input("2025-03-10T10:00", "11987654321")
	in.Notes = "prefers scissors"
	res, err := f.bookings.Create(ctxT(t), f.salon.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := f.bookings.Cancel(ctxT(t), f.salon.ID, res.Appointment.ID, "sick")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.AppointmentStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("unexpected appointment %+v", cancelled)
	}

	var stored models.Appointment
	f.db.First(&stored, "id = ?", res.Appointment.ID)
	if !strings.HasPrefix(stored.Notes, "prefers scissors\n[") || !strings.HasSuffix(stored.Notes, "] Cancelled: sick") {
		t.Fatalf("notes not appended: %q", stored.Notes)
	}
	if stored.CancellationReason != "sick" {
		t.Fatalf("reason not stored")
	}

	_, err = f.bookings.Cancel(ctxT(t), f.salon.ID, res.Appointment.ID, "again")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error on second cancel, got %v", err)
	}

	f.dispatcher.Wait()
	if f.recorder.Count(notifications.EventAppointmentCancelled) != 1 {
		t.Fatalf("expected one cancellation notification")
	}
}

func TestCancelOtherSalonNotFound(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "2025-03-10T10:00")
	_, err := f.bookings.Cancel(ctxT(t), uuid.New(), appt.ID, "")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListByClientPhoneOrdered(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2025-03-12T09:00")
	f.book(t, "2025-03-10T16:00")
	f.book(t, "2025-03-11T08:00")

	views, err := f.bookings.ListByClientPhone(ctxT(t), f.salon.ID, "11 98765 4321")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 appointments, got %d", len(views))
	}
	for i := 1; i < len(views); i++ {
		if views[i].DateTime.Before(views[i-1].DateTime) {
			t.Fatalf("appointments not ordered by dateTime")
		}
	}
	if !strings.HasPrefix(views[0].ConfirmationCode, "BK-") {
		t.Fatalf("missing confirmation code")
	}

	none, err := f.bookings.ListByClientPhone(ctxT(t), f.salon.ID, "21000000000")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list, got %d (%v)", len(none), err)
	}
}

func TestGetByConfirmationCode(t *testing.T) {
	f := newFixture(t)
	res, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input("2025-03-10T10:00", "11987654321"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := f.bookings.GetByConfirmationCode(ctxT(t), f.salon.ID, strings.ToLower(res.ConfirmationCode))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if view.ID != res.Appointment.ID {
		t.Fatalf("wrong appointment")
	}

	var ve *ValidationError
	if _, err := f.bookings.GetByConfirmationCode(ctxT(t), f.salon.ID, "BK-??"); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var nf *NotFoundError
	if _, err := f.bookings.GetByConfirmationCode(ctxT(t), uuid.New(), res.ConfirmationCode); !errors.As(err, &nf) {
		t.Fatalf("expected not found in another salon, got %v", err)
	}
}

func TestExistingClientIsReusedWithoutValidation(t *testing.T) {
	f := newFixture(t)
	legacy := models.Client{SalonID: f.salon.ID, Name: "J", Phone: "1199", IsActive: true}
	mustCreate(t, f.db, &legacy)

	in := f.input("2025-03-10T10:00", "11-99")
	in.ClientName = "J"
	res, err := f.bookings.Create(ctxT(t), f.salon.ID, in)
	if err != nil {
		t.Fatalf("existing client should skip validation: %v", err)
	}
	if *res.Appointment.ClientID != legacy.ID || res.ClientCreated {
		t.Fatalf("expected the legacy client to be reused")
	}

	f.dispatcher.Wait()
	if f.recorder.Count(notifications.EventClientCredentials) != 0 {
		t.Fatalf("no credentials should be sent for existing clients")
	}
}

func TestClientResolverMatchesByEmail(t *testing.T) {
	f := newFixture(t)
	known := models.Client{SalonID: f.salon.ID, Name: "Ana", Phone: "11911112222", Email: "ana@example.com", IsActive: true}
	mustCreate(t, f.db, &known)

	rc, err := f.clients.Resolve(f.db, f.salon.ID, ClientInput{Name: "Ana", Phone: "21933334444", Email: "ANA@example.com"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rc.Client.ID != known.ID || rc.Created {
		t.Fatalf("expected match by email")
	}
}

func TestCompleteOnlyFromConfirmed(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "2025-03-10T10:00")
	if _, err := f.bookings.Complete(ctxT(t), f.salon.ID, appt.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	_, err := f.bookings.Complete(ctxT(t), f.salon.ID, appt.ID)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.bookings.Cancel(ctxT(t), f.salon.ID, appt.ID, ""); !errors.As(err, &ve) {
		t.Fatalf("completed appointments cannot be cancelled, got %v", err)
	}
}

func TestListForDayAgenda(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2025-03-10T14:00")
	f.book(t, "2025-03-10T09:00")
	f.book(t, "2025-03-11T09:00")

	views, err := f.bookings.ListForDay(ctxT(t), f.salon.ID, day(2025, time.March, 10), nil)
	if err != nil {
		t.Fatalf("list for day: %v", err)
	}
	if len(views) != 2 || views[0].DateTime.Hour() != 9 {
		t.Fatalf("expected two appointments ordered by time, got %d", len(views))
	}
	if views[0].ConfirmationCode == "" || views[0].Service == nil {
		t.Fatalf("expected view with code and service preloaded")
	}

	other := uuid.New()
	views, err = f.bookings.ListForDay(ctxT(t), f.salon.ID, day(2025, time.March, 10), &other)
	if err != nil || len(views) != 0 {
		t.Fatalf("expected empty agenda for unknown professional, got %d (%v)", len(views), err)
	}
}

func TestCreateBookingRespectsBlockedRange(t *testing.T) {
	f := newFixture(t)
	mustCreate(t, f.db, &models.BlockedSlot{
		SalonID:        f.salon.ID,
		ProfessionalID: f.professional.ID,
		Date:           datatypes.Date(day(2025, time.March, 10)),
		StartTime:      "10:00",
		EndTime:        "12:00",
	})

	var conflict *ConflictError
	if _, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input("2025-03-10T10:00", "11987654321")); !errors.As(err, &conflict) {
		t.Fatalf("expected conflict inside blocked range, got %v", err)
	}
	if n := f.countAppointments(t); n != 0 {
		t.Fatalf("blocked booking must leave no rows, got %d", n)
	}
	if _, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input("2025-03-10T12:00", "11987654321")); err != nil {
		t.Fatalf("12:00 is past the blocked range: %v", err)
	}
}

func TestCreateBookingOutsideBusinessHours(t *testing.T) {
	f := newFixture(t)
	var ve *ValidationError
	for _, at := range []string{"2025-03-10T23:00", "2025-03-10T07:30", "2025-03-10T18:00"} {
		if _, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input(at, "11987654321")); !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", at, err)
		}
	}
	if n := f.countAppointments(t); n != 0 {
		t.Fatalf("expected no appointments, got %d", n)
	}
	if _, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input("2025-03-10T17:00", "11987654321")); err != nil {
		t.Fatalf("17:00 is the last slot: %v", err)
	}
}
