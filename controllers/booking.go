package controllers

import (
	"net/http"
	"strings"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingController serves the customer-facing /salon/:id routes.
type BookingController struct {
	Catalog      *services.Catalog
	Availability *services.AvailabilityService
	Bookings     *services.BookingService
	Requests     *services.AppointmentRequestService
	Logger       *zap.Logger
}

type cancelInput struct {
	Reason string `json:"reason"`
}

func (bc *BookingController) GetInfo(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	salon, err := bc.Catalog.GetSalon(c.Request.Context(), salonID)
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, salon)
}

func (bc *BookingController) GetServices(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	list, err := bc.Catalog.ListServices(c.Request.Context(), salonID)
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, list)
}

func (bc *BookingController) GetProfessionals(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	list, err := bc.Catalog.ListProfessionals(c.Request.Context(), salonID)
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, list)
}

// GetAvailability expects serviceId, professionalId and date (YYYY-MM-DD).
func (bc *BookingController) GetAvailability(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	serviceID, err := uuid.Parse(c.Query("serviceId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "serviceId is required")
		return
	}
	professionalID, err := uuid.Parse(c.Query("professionalId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "professionalId is required")
		return
	}
	date, err := utils.ParseDate(c.Query("date"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	slots, err := bc.Availability.Calculate(c.Request.Context(), salonID, professionalID, serviceID, date)
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, slots)
}

func (bc *BookingController) CreateBooking(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	var input services.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	result, err := bc.Bookings.Create(c.Request.Context(), salonID, input)
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, result)
}

// CancelBooking takes an optional reason from the JSON body or the query string.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	appointmentID, ok := pathID(c, "appointmentId", "appointment")
	if !ok {
		return
	}
	appt, err := bc.Bookings.Cancel(c.Request.Context(), salonID, appointmentID, cancelReason(c))
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, appt)
}

func (bc *BookingController) ListBookings(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	views, err := bc.Bookings.ListByClientPhone(c.Request.Context(), salonID, c.Query("clientPhone"))
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, views)
}

func (bc *BookingController) GetBookingByCode(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	view, err := bc.Bookings.GetByConfirmationCode(c.Request.Context(), salonID, c.Param("code"))
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, view)
}

func (bc *BookingController) CreateRequest(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	var input services.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	request, err := bc.Requests.CreateRequest(c.Request.Context(), salonID, input)
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, request)
}

// CancelRequest lets a client withdraw a pending request; clientPhone must
// match the one the request was made with.
func (bc *BookingController) CancelRequest(c *gin.Context) {
	salonID, ok := publicSalonID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId", "request")
	if !ok {
		return
	}
	request, err := bc.Requests.CancelRequest(c.Request.Context(), salonID, requestID, c.Query("clientPhone"))
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, request)
}

func cancelReason(c *gin.Context) string {
	if reason := strings.TrimSpace(c.Query("reason")); reason != "" {
		return reason
	}
	var input cancelInput
	if c.Request.ContentLength > 0 {
		_ = c.ShouldBindJSON(&input)
	}
	return strings.TrimSpace(input.Reason)
}
