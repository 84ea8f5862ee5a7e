// controllers/service.go
package controllers

import (
	"net/http"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServiceController manages the salon's service catalog for staff.
type ServiceController struct {
	Catalog *services.Catalog
	Logger  *zap.Logger
}

// CreateService creates a new service for the salon
func (sc *ServiceController) CreateService(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	var input services.ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	service, err := sc.Catalog.CreateService(c.Request.Context(), salonID, input)
	if err != nil {
		respondError(c, sc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, service)
}

// GetServices retrieves all services for the salon, inactive included
func (sc *ServiceController) GetServices(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	list, err := sc.Catalog.AllServices(c.Request.Context(), salonID)
	if err != nil {
		respondError(c, sc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, list)
}

// GetService retrieves a specific service by ID
func (sc *ServiceController) GetService(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	serviceID, ok := pathID(c, "id", "service")
	if !ok {
		return
	}
	service, err := sc.Catalog.GetService(c.Request.Context(), salonID, serviceID)
	if err != nil {
		respondError(c, sc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, service)
}

// UpdateService updates an existing service
func (sc *ServiceController) UpdateService(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	serviceID, ok := pathID(c, "id", "service")
	if !ok {
		return
	}
	var input services.ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	service, err := sc.Catalog.UpdateService(c.Request.Context(), salonID, serviceID, input)
	if err != nil {
		respondError(c, sc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, service)
}

// DeleteService soft deletes a service by deactivating it
func (sc *ServiceController) DeleteService(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	serviceID, ok := pathID(c, "id", "service")
	if !ok {
		return
	}
	if err := sc.Catalog.DeactivateService(c.Request.Context(), salonID, serviceID); err != nil {
		respondError(c, sc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
