package controllers

import (
	"net/http"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientController gives staff read access to the clients created by bookings.
type ClientController struct {
	Catalog *services.Catalog
	Logger  *zap.Logger
}

func (cc *ClientController) GetClients(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	clients, err := cc.Catalog.SearchClients(c.Request.Context(), salonID, c.Query("phone"))
	if err != nil {
		respondError(c, cc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, clients)
}

func (cc *ClientController) GetClient(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "id", "client")
	if !ok {
		return
	}
	client, err := cc.Catalog.GetClient(c.Request.Context(), salonID, clientID)
	if err != nil {
		respondError(c, cc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, client)
}
