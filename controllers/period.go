package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// monthYear reads ?month and ?year, defaulting to the current month.
func monthYear(c *gin.Context) (int, int, bool) {
	now := time.Now().UTC()
	month, year := int(now.Month()), now.Year()
	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		month = m
	}
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		year = y
	}
	return month, year, true
}
