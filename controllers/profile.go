package controllers

import (
	"net/http"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ProfileController edits the salon shown on the public info page.
type ProfileController struct {
	Catalog *services.Catalog
	Logger  *zap.Logger
}

func (pc *ProfileController) GetProfile(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	salon, err := pc.Catalog.GetSalon(c.Request.Context(), salonID)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, salon)
}

func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	var input services.SalonProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	salon, err := pc.Catalog.UpdateSalon(c.Request.Context(), salonID, input)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, salon)
}

func (pc *ProfileController) UpdateWorkingHours(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	var input struct {
		WorkingHours datatypes.JSON `json:"workingHours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if _, err := pc.Catalog.UpdateSalon(c.Request.Context(), salonID, services.SalonProfileInput{WorkingHours: &input.WorkingHours}); err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"message": "Working hours updated"})
}
