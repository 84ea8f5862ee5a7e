package controllers

import (
	"net/http"
	"time"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AppointmentController struct {
	Bookings *services.BookingService
	Logger   *zap.Logger
}

// GetAgenda lists a day's appointments, today when ?date is absent.
func (ac *AppointmentController) GetAgenda(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	day := time.Now()
	if v := c.Query("date"); v != "" {
		parsed, err := utils.ParseDate(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	var professionalID *uuid.UUID
	if v := c.Query("professionalId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid professional ID format")
			return
		}
		professionalID = &id
	}
	views, err := ac.Bookings.ListForDay(c.Request.Context(), salonID, day, professionalID)
	if err != nil {
		respondError(c, ac.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, views)
}

func (ac *AppointmentController) CompleteAppointment(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	appointmentID, ok := pathID(c, "id", "appointment")
	if !ok {
		return
	}
	appt, err := ac.Bookings.Complete(c.Request.Context(), salonID, appointmentID)
	if err != nil {
		respondError(c, ac.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, appt)
}

func (ac *AppointmentController) CancelAppointment(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	appointmentID, ok := pathID(c, "id", "appointment")
	if !ok {
		return
	}
	appt, err := ac.Bookings.Cancel(c.Request.Context(), salonID, appointmentID, cancelReason(c))
	if err != nil {
		respondError(c, ac.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, appt)
}
