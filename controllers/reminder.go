// controllers/reminder.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReminderController struct {
	Reminders *services.ReminderService
	Logger    *zap.Logger
}

type sendRemindersInput struct {
	Date string `json:"date"`
}

// SendReminders sends the salon's reminders for a day, tomorrow by default
func (rc *ReminderController) SendReminders(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	var input sendRemindersInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
	}
	day := time.Now().AddDate(0, 0, 1)
	if input.Date != "" {
		parsed, err := utils.ParseDate(input.Date)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	sent, err := rc.Reminders.SendSalonReminders(c.Request.Context(), salonID, day)
	if err != nil {
		respondError(c, rc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"sent": sent, "date": day.Format(utils.DateLayout)})
}

// GetReminderLogs lists recent reminder attempts
func (rc *ReminderController) GetReminderLogs(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := rc.Reminders.ListLogs(c.Request.Context(), salonID, limit)
	if err != nil {
		respondError(c, rc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, logs)
}
