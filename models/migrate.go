package models

import (
	"fmt"

	"gorm.io/gorm"
)

// activeSlotIndex rejects a second live appointment for the same professional and start time.
const activeSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_slot
	ON appointments (salon_id, professional_id, date_time)
	WHERE status IN ('pending', 'confirmed')`

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Salon{},
		&Service{},
		&Professional{},
		&Client{},
		&BlockedSlot{},
		&AppointmentRequest{},
		&Appointment{},
		&MonthlyCommission{},
		&CommissionDetail{},
		&CommissionPayment{},
		&User{},
		&ReminderLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(activeSlotIndex).Error; err != nil {
		return fmt.Errorf("create active slot index: %w", err)
	}
	return nil
}
