package utils

import (
	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func RespondWithData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

func RespondWithErrorData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: false, Error: message, Data: data})
}

func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: message})
}
