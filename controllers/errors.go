package controllers

import (
	"errors"
	"net/http"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto the response envelope. Anything
// unrecognized is logged and reported as a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validation *services.ValidationError
		notFound   *services.NotFoundError
		conflict   *services.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		utils.RespondWithError(c, http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		utils.RespondWithError(c, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		var data interface{}
		if len(conflict.AppointmentIDs) > 0 {
			data = gin.H{"conflictingAppointmentIds": conflict.AppointmentIDs}
		}
		utils.RespondWithErrorData(c, http.StatusConflict, conflict.Error(), data)
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
