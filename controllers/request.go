package controllers

import (
	"net/http"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RequestController struct {
	Requests *services.AppointmentRequestService
	Logger   *zap.Logger
}

type rejectInput struct {
	Reason string `json:"reason"`
}

func (rc *RequestController) ListRequests(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	requests, err := rc.Requests.ListRequests(c.Request.Context(), salonID, c.Query("status"))
	if err != nil {
		respondError(c, rc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, requests)
}

func (rc *RequestController) ApproveRequest(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id", "request")
	if !ok {
		return
	}
	result, err := rc.Requests.Approve(c.Request.Context(), salonID, requestID, userID)
	if err != nil {
		respondError(c, rc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, result)
}

func (rc *RequestController) RejectRequest(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id", "request")
	if !ok {
		return
	}
	var input rejectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	request, err := rc.Requests.Reject(c.Request.Context(), salonID, requestID, input.Reason, userID)
	if err != nil {
		respondError(c, rc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, request)
}
