// controllers/report.go
package controllers

import (
	"net/http"
	"time"

	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportController handles all reporting functions
type ReportController struct {
	Reports *services.ReportService
	Logger  *zap.Logger
}

// GetDashboardOverview returns today's agenda and the open counters
func (rc *ReportController) GetDashboardOverview(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	overview, err := rc.Reports.Dashboard(c.Request.Context(), salonID, time.Now())
	if err != nil {
		respondError(c, rc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, overview)
}

// GetReportAnalytics returns revenue and rankings for ?month&year
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	month, year, ok := monthYear(c)
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "month and year must be numbers")
		return
	}
	summary, err := rc.Reports.Analytics(c.Request.Context(), salonID, month, year)
	if err != nil {
		respondError(c, rc.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, summary)
}
