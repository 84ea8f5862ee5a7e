package controllers

import (
	"net/http"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfessionalController struct {
	Catalog *services.Catalog
	Logger  *zap.Logger
}

func (pc *ProfessionalController) CreateProfessional(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	var input services.ProfessionalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	professional, err := pc.Catalog.CreateProfessional(c.Request.Context(), salonID, input)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, professional)
}

func (pc *ProfessionalController) GetProfessionals(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	list, err := pc.Catalog.AllProfessionals(c.Request.Context(), salonID)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, list)
}

func (pc *ProfessionalController) UpdateProfessional(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	professionalID, ok := pathID(c, "id", "professional")
	if !ok {
		return
	}
	var input services.ProfessionalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	professional, err := pc.Catalog.UpdateProfessional(c.Request.Context(), salonID, professionalID, input)
	if err != nil {
		respondError(c, pc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, professional)
}
