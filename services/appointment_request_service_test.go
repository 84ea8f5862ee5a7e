package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/notifications"

	"github.com/google/uuid"
)

func (f *fixture) request(t *testing.T, dateTime string) *models.AppointmentRequest {
	t.Helper()
	req, err := f.requests.CreateRequest(ctxT(t), f.salon.ID, f.input(dateTime, "(11) 98765-4321"))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

func TestCreateRequestIsPending(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "2025-03-10T10:37:00")
	if req.Status != models.RequestStatusPending || req.ClientPhone != "11987654321" {
		t.Fatalf("unexpected request %+v", req)
	}
	if n := f.countAppointments(t); n != 0 {
		t.Fatalf("a request must not create appointments")
	}
	f.dispatcher.Wait()
	if f.recorder.Count(notifications.EventRequestReceived) != 1 {
		t.Fatalf("expected request_received notification")
	}
}

func TestApproveTruncatesToHour(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "2025-03-10T10:37:00")
	approver := uuid.New()

	res, err := f.requests.Approve(ctxT(t), f.salon.ID, req.ID, approver)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	want := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if !res.Appointment.DateTime.Equal(want) {
		t.Fatalf("expected %v, got %v", want, res.Appointment.DateTime)
	}
	if res.Appointment.Status != models.AppointmentStatusConfirmed {
		t.Fatalf("expected confirmed appointment")
	}

	var stored models.AppointmentRequest
	f.db.First(&stored, "id = ?", req.ID)
	if stored.Status != models.RequestStatusApproved {
		t.Fatalf("request not approved: %s", stored.Status)
	}
	if stored.LinkedAppointmentID == nil || *stored.LinkedAppointmentID != res.Appointment.ID {
		t.Fatalf("request not linked to appointment")
	}
	if stored.ApprovedBy == nil || *stored.ApprovedBy != approver || stored.ApprovedAt == nil {
		t.Fatalf("approver not recorded")
	}
	if !stored.DateTime.Equal(time.Date(2025, 3, 10, 10, 37, 0, 0, time.UTC)) {
		t.Fatalf("request time should be left as submitted")
	}

	f.dispatcher.Wait()
	if f.recorder.Count(notifications.EventRequestApproved) != 1 {
		t.Fatalf("expected request_approved notification")
	}
}

func TestApproveNormalizesStoredZone(t *testing.T) {
	f := newFixture(t)
	ist := time.FixedZone("IST", 5*3600+1800)
	req := models.AppointmentRequest{
		SalonID:        f.salon.ID,
		ServiceID:      f.service.ID,
		ProfessionalID: f.professional.ID,
		DateTime:       time.Date(2025, 3, 10, 10, 37, 0, 0, time.UTC).In(ist),
		ClientName:     "Maria Souza",
		ClientPhone:    "11987654321",
		Status:         models.RequestStatusPending,
	}
	mustCreate(t, f.db, &req)

	var loaded models.AppointmentRequest
	if err := f.db.First(&loaded, "id = ?", req.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.DateTime.Location() != time.UTC || loaded.DateTime.Hour() != 10 {
		t.Fatalf("request time should read back as 10:37 UTC, got %v", loaded.DateTime)
	}

	res, err := f.requests.Approve(ctxT(t), f.salon.ID, req.ID, uuid.New())
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	want := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	if !res.Appointment.DateTime.Equal(want) {
		t.Fatalf("expected %v, got %v", want, res.Appointment.DateTime)
	}

	var stored models.Appointment
	if err := f.db.First(&stored, "id = ?", res.Appointment.ID).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	if stored.DateTime.Location() != time.UTC || stored.DateTime.Hour() != 10 {
		t.Fatalf("stored appointment should read back at 10:00 UTC, got %v", stored.DateTime)
	}
}

func TestApproveOutsideBusinessHoursKeepsRequestPending(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "2025-03-10T07:40")

	var ve *ValidationError
	if _, err := f.requests.Approve(ctxT(t), f.salon.ID, req.ID, uuid.New()); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var stored models.AppointmentRequest
	f.db.First(&stored, "id = ?", req.ID)
	if stored.Status != models.RequestStatusPending {
		t.Fatalf("request should stay pending, got %s", stored.Status)
	}
	if n := f.countAppointments(t); n != 0 {
		t.Fatalf("expected no appointments, got %d", n)
	}
}

func TestApproveTwiceFails(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "2025-03-10T10:00")
	if _, err := f.requests.Approve(ctxT(t), f.salon.ID, req.ID, uuid.New()); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, err := f.requests.Approve(ctxT(t), f.salon.ID, req.ID, uuid.New())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := f.countAppointments(t); n != 1 {
		t.Fatalf("expected exactly one appointment, got %d", n)
	}
}

func TestConcurrentApprovalsCreateOneAppointment(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "2025-03-10T10:00")

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.requests.Approve(ctxT(t), f.salon.ID, req.ID, uuid.New())
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	if ok != 1 {
		t.Fatalf("expected one approval to succeed, got %d (%v)", ok, errs)
	}
	if n := f.countAppointments(t); n != 1 {
		t.Fatalf("expected one appointment, got %d", n)
	}
}

func TestApproveConflictKeepsRequestPending(t *testing.T) {
	f := newFixture(t)
	f.book(t, "2025-03-10T10:00")
	req := f.request(t, "2025-03-10T10:15")

	_, err := f.requests.Approve(ctxT(t), f.salon.ID, req.ID, uuid.New())
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var stored models.AppointmentRequest
	f.db.First(&stored, "id = ?", req.ID)
	if stored.Status != models.RequestStatusPending {
		t.Fatalf("request should stay pending, got %s", stored.Status)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "2025-03-10T10:00")

	var ve *ValidationError
	if _, err := f.requests.Reject(ctxT(t), f.salon.ID, req.ID, "   ", uuid.New()); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}

	rejecter := uuid.New()
	rejected, err := f.requests.Reject(ctxT(t), f.salon.ID, req.ID, "fully booked", rejecter)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.RequestStatusRejected || rejected.RejectionReason != "fully booked" {
		t.Fatalf("unexpected request %+v", rejected)
	}

	f.dispatcher.Wait()
	events := f.recorder.Events()
	found := false
	for _, e := range events {
		if e.Event == notifications.EventRequestRejected && e.Payload.String("reason") == "fully booked" {
			found = true
		}
	}
	if !found {
		t.Fatalf("rejection notification should carry the reason")
	}

	if _, err := f.requests.Approve(ctxT(t), f.salon.ID, req.ID, uuid.New()); !errors.As(err, &ve) {
		t.Fatalf("rejected requests cannot be approved, got %v", err)
	}
}

func TestCancelRequestChecksPhone(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, "2025-03-10T10:00")

	var nf *NotFoundError
	if _, err := f.requests.CancelRequest(ctxT(t), f.salon.ID, req.ID, "21000000000"); !errors.As(err, &nf) {
		t.Fatalf("expected not found for another phone, got %v", err)
	}
	cancelled, err := f.requests.CancelRequest(ctxT(t), f.salon.ID, req.ID, "11 98765-4321")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.RequestStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestListRequestsFilter(t *testing.T) {
	f := newFixture(t)
	a := f.request(t, "2025-03-11T10:00")
	f.request(t, "2025-03-10T10:00")
	if _, err := f.requests.Reject(ctxT(t), f.salon.ID, a.ID, "no", uuid.New()); err != nil {
		t.Fatalf("reject: %v", err)
	}

	pending, err := f.requests.ListRequests(ctxT(t), f.salon.ID, "pending")
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending request, got %d (%v)", len(pending), err)
	}
	all, err := f.requests.ListRequests(ctxT(t), f.salon.ID, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected two requests, got %d (%v)", len(all), err)
	}
	if all[0].DateTime.After(all[1].DateTime) {
		t.Fatalf("requests not ordered by dateTime")
	}
	var ve *ValidationError
	if _, err := f.requests.ListRequests(ctxT(t), f.salon.ID, "archived"); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for unknown status")
	}
}
