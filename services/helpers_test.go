package services

import (
	"context"
	"testing"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/notifications"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	db           *gorm.DB
	salon        models.Salon
	service      models.Service
	longService  models.Service
	professional models.Professional
	recorder     *notifications.Recorder
	dispatcher   *notifications.Dispatcher
	guard        *ConflictGuard
	clients      *ClientResolver
	commissions  *CommissionService
	bookings     *BookingService
	requests     *AppointmentRequestService
	availability *AvailabilityService
	catalog      *Catalog
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{db: db, recorder: &notifications.Recorder{}}
	f.salon = models.Salon{Name: "Studio Bela", Phone: "11999990000", IsActive: true}
	mustCreate(t, db, &f.salon)
	f.service = models.Service{SalonID: f.salon.ID, Name: "Haircut", Price: decimal.RequireFromString("80.00"), DurationMinutes: 60, IsActive: true}
	mustCreate(t, db, &f.service)
	f.longService = models.Service{SalonID: f.salon.ID, Name: "Coloring", Price: decimal.RequireFromString("150.00"), DurationMinutes: 90, IsActive: true}
	mustCreate(t, db, &f.longService)
	f.professional = models.Professional{SalonID: f.salon.ID, Name: "Carla", CommissionPercent: decimal.NewFromInt(30), IsActive: true}
	mustCreate(t, db, &f.professional)

	logger := zap.NewNop()
	locker := NewLocalLocker()
	f.dispatcher = notifications.NewDispatcher(f.recorder, logger, time.Second)
	f.guard = NewConflictGuard(db, locker, StartExactPolicy())
	f.clients = NewClientResolver(f.dispatcher)
	f.commissions = NewCommissionService(db, locker, logger)
	f.bookings = NewBookingService(db, f.guard, f.clients, f.commissions, f.dispatcher, logger)
	f.requests = NewAppointmentRequestService(db, f.guard, f.clients, f.commissions, f.dispatcher, logger)
	f.availability = NewAvailabilityService(db, StartExactPolicy())
	f.catalog = NewCatalog(db)
	return f
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func (f *fixture) input(dateTime, phone string) BookingInput {
	return BookingInput{
		ServiceID:      f.service.ID.String(),
		ProfessionalID: f.professional.ID.String(),
		DateTime:       dateTime,
		ClientName:     "Maria Souza",
		ClientPhone:    phone,
		ClientEmail:    "maria@example.com",
	}
}

func (f *fixture) book(t *testing.T, dateTime string) *models.Appointment {
	t.Helper()
	res, err := f.bookings.Create(ctxT(t), f.salon.ID, f.input(dateTime, "(11) 98765-4321"))
	if err != nil {
		t.Fatalf("book %s: %v", dateTime, err)
	}
	return res.Appointment
}

func (f *fixture) countAppointments(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&models.Appointment{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ctxT(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
