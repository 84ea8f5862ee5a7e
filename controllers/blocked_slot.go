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

type BlockedSlotController struct {
	Catalog *services.Catalog
	Logger  *zap.Logger
}

func (bc *BlockedSlotController) CreateBlockedSlot(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	var input services.BlockedSlotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	block, err := bc.Catalog.CreateBlockedSlot(c.Request.Context(), salonID, input)
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, block)
}

func (bc *BlockedSlotController) GetBlockedSlots(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
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
	var date *time.Time
	if v := c.Query("date"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = &d
	}
	blocks, err := bc.Catalog.ListBlockedSlots(c.Request.Context(), salonID, professionalID, date)
	if err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, blocks)
}

func (bc *BlockedSlotController) DeleteBlockedSlot(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "blocked slot")
	if !ok {
		return
	}
	if err := bc.Catalog.DeleteBlockedSlot(c.Request.Context(), salonID, id); err != nil {
		respondError(c, bc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"message": "Blocked slot deleted successfully"})
}
