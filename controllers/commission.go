package controllers

import (
	"net/http"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CommissionController struct {
	Commissions *services.CommissionService
	Logger      *zap.Logger
}

type recalculateInput struct {
	ProfessionalID string `json:"professionalId" binding:"required"`
	Month          int    `json:"month" binding:"required"`
	Year           int    `json:"year" binding:"required"`
}

func (cc *CommissionController) Recalculate(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	var input recalculateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	professionalID, err := uuid.Parse(input.ProfessionalID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid professional ID format")
		return
	}
	mc, err := cc.Commissions.Recalculate(c.Request.Context(), salonID, professionalID, input.Month, input.Year)
	if err != nil {
		respondError(c, cc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, mc)
}

func (cc *CommissionController) ListCommissions(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	month, year, ok := monthYear(c)
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "month and year must be numbers")
		return
	}
	rows, err := cc.Commissions.ListForSalon(c.Request.Context(), salonID, month, year)
	if err != nil {
		respondError(c, cc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, rows)
}

func (cc *CommissionController) GetCommission(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "commission")
	if !ok {
		return
	}
	mc, err := cc.Commissions.Get(c.Request.Context(), salonID, id)
	if err != nil {
		respondError(c, cc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, mc)
}

func (cc *CommissionController) RegisterPayment(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "commission")
	if !ok {
		return
	}
	var input services.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	mc, err := cc.Commissions.RegisterPayment(c.Request.Context(), salonID, id, input)
	if err != nil {
		respondError(c, cc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, mc)
}
