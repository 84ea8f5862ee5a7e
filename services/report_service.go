package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardOverview struct {
	TodayAppointments    []AppointmentView `json:"todayAppointments"`
	PendingRequests      int64             `json:"pendingRequests"`
	UpcomingCount        int64             `json:"upcomingCount"`
	MonthCompleted       int64             `json:"monthCompleted"`
	OutstandingBalance   decimal.Decimal   `json:"outstandingBalance"`
	CommissionsUnsettled int64             `json:"commissionsUnsettled"`
}

type ServiceSummary struct {
	Name    string          `json:"name"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProfessionalSummary struct {
	Name         string          `json:"name"`
	Appointments int             `json:"appointments"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type AnalyticsSummary struct {
	Month               int                   `json:"month"`
	Year                int                   `json:"year"`
	CurrentMonthRevenue decimal.Decimal       `json:"currentMonthRevenue"`
	LastMonthRevenue    decimal.Decimal       `json:"lastMonthRevenue"`
	MonthGrowth         decimal.Decimal       `json:"monthGrowth"`
	CancelledCount      int64                 `json:"cancelledCount"`
	TopServices         []ServiceSummary      `json:"topServices"`
	TopProfessionals    []ProfessionalSummary `json:"topProfessionals"`
}

// ReportService aggregates agenda and revenue figures for staff screens.
// Revenue counts completed appointments at the service's current price.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) Dashboard(ctx context.Context, salonID uuid.UUID, now time.Time) (*DashboardOverview, error) {
	db := s.db.WithContext(ctx)
	now = utils.AsWallClock(now)
	dayStart, dayEnd := utils.DayRange(now)
	monthStart, monthEnd := utils.MonthRange(now.Year(), int(now.Month()))

	var today []models.Appointment
	if err := db.Preload("Service").Preload("Professional").Preload("Client").
		Where("salon_id = ? AND date_time >= ? AND date_time < ?", salonID, dayStart, dayEnd).
		Where("status <> ?", models.AppointmentStatusCancelled).
		Order("date_time ASC").Find(&today).Error; err != nil {
		return nil, fmt.Errorf("load today's appointments: %w", err)
	}

	overview := &DashboardOverview{TodayAppointments: make([]AppointmentView, 0, len(today))}
	for _, a := range today {
		overview.TodayAppointments = append(overview.TodayAppointments, newAppointmentView(a))
	}

	if err := db.Model(&models.AppointmentRequest{}).
		Where("salon_id = ? AND status = ?", salonID, models.RequestStatusPending).
		Count(&overview.PendingRequests).Error; err != nil {
		return nil, fmt.Errorf("count pending requests: %w", err)
	}
	if err := db.Model(&models.Appointment{}).
		Where("salon_id = ? AND date_time >= ? AND status IN ?", salonID, now, models.BlockingStatuses).
		Count(&overview.UpcomingCount).Error; err != nil {
		return nil, fmt.Errorf("count upcoming appointments: %w", err)
	}
	if err := db.Model(&models.Appointment{}).
		Where("salon_id = ? AND status = ? AND date_time >= ? AND date_time < ?", salonID, models.AppointmentStatusCompleted, monthStart, monthEnd).
		Count(&overview.MonthCompleted).Error; err != nil {
		return nil, fmt.Errorf("count completed appointments: %w", err)
	}

	var open []models.MonthlyCommission
	if err := db.Where("salon_id = ? AND status <> ?", salonID, models.CommissionStatusPaid).
		Find(&open).Error; err != nil {
		return nil, fmt.Errorf("load open commissions: %w", err)
	}
	overview.OutstandingBalance = decimal.Zero
	for _, mc := range open {
		if mc.BalanceDue.IsPositive() {
			overview.OutstandingBalance = overview.OutstandingBalance.Add(mc.BalanceDue)
			overview.CommissionsUnsettled++
		}
	}
	return overview, nil
}

func (s *ReportService) Analytics(ctx context.Context, salonID uuid.UUID, month, year int) (*AnalyticsSummary, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	current, err := s.completedIn(ctx, salonID, year, month)
	if err != nil {
		return nil, err
	}
	prevYear, prevMonth := year, month-1
	if prevMonth < 1 {
		prevYear, prevMonth = year-1, 12
	}
	previous, err := s.completedIn(ctx, salonID, prevYear, prevMonth)
	if err != nil {
		return nil, err
	}

	summary := &AnalyticsSummary{
		Month:               month,
		Year:                year,
		CurrentMonthRevenue: revenueOf(current),
		LastMonthRevenue:    revenueOf(previous),
	}
	summary.MonthGrowth = growthPercentage(summary.CurrentMonthRevenue, summary.LastMonthRevenue)

	start, end := utils.MonthRange(year, month)
	if err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("salon_id = ? AND status = ? AND date_time >= ? AND date_time < ?", salonID, models.AppointmentStatusCancelled, start, end).
		Count(&summary.CancelledCount).Error; err != nil {
		return nil, fmt.Errorf("count cancellations: %w", err)
	}

	summary.TopServices = topServices(current, 4)
	summary.TopProfessionals = topProfessionals(current, 4)
	return summary, nil
}

func (s *ReportService) completedIn(ctx context.Context, salonID uuid.UUID, year, month int) ([]models.Appointment, error) {
	start, end := utils.MonthRange(year, month)
	var appointments []models.Appointment
	err := s.db.WithContext(ctx).Preload("Service").Preload("Professional").
		Where("salon_id = ? AND status = ? AND date_time >= ? AND date_time < ?", salonID, models.AppointmentStatusCompleted, start, end).
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("load completed appointments: %w", err)
	}
	return appointments, nil
}

func revenueOf(appointments []models.Appointment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range appointments {
		if a.Service != nil {
			total = total.Add(a.Service.Price)
		}
	}
	return total
}

func growthPercentage(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

func topServices(appointments []models.Appointment, limit int) []ServiceSummary {
	byID := map[uuid.UUID]*ServiceSummary{}
	for _, a := range appointments {
		if a.Service == nil {
			continue
		}
		entry, ok := byID[a.ServiceID]
		if !ok {
			entry = &ServiceSummary{Name: a.Service.Name, Revenue: decimal.Zero}
			byID[a.ServiceID] = entry
		}
		entry.Count++
		entry.Revenue = entry.Revenue.Add(a.Service.Price)
	}
	out := make([]ServiceSummary, 0, len(byID))
	for _, entry := range byID {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func topProfessionals(appointments []models.Appointment, limit int) []ProfessionalSummary {
	byID := map[uuid.UUID]*ProfessionalSummary{}
	for _, a := range appointments {
		if a.Professional == nil || a.Service == nil {
			continue
		}
		entry, ok := byID[a.ProfessionalID]
		if !ok {
			entry = &ProfessionalSummary{Name: a.Professional.Name, Revenue: decimal.Zero}
			byID[a.ProfessionalID] = entry
		}
		entry.Appointments++
		entry.Revenue = entry.Revenue.Add(a.Service.Price)
	}
	out := make([]ProfessionalSummary, 0, len(byID))
	for _, entry := range byID {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
