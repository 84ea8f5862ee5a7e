package controllers

import (
	"net/http"

	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// salonFromContext reads the salon stored by the auth middleware.
func salonFromContext(c *gin.Context) (uuid.UUID, bool) {
	salonID, exists := c.Get("salonId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return uuid.Nil, false
	}
	value, _ := salonID.(string)
	salonUUID, err := uuid.Parse(value)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid salon ID format")
		return uuid.Nil, false
	}
	return salonUUID, true
}

func userFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return uuid.Nil, false
	}
	value, _ := userID.(string)
	userUUID, err := uuid.Parse(value)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userUUID, true
}

// pathID parses a uuid path parameter, answering 400 when malformed.
func pathID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// publicSalonID reads the tenant from the public /salon/:id prefix.
func publicSalonID(c *gin.Context) (uuid.UUID, bool) {
	return pathID(c, "id", "salon")
}
