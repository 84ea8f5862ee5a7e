package controllers

import (
	"errors"
	"net/http"
	"time"

	"salonpro-booking/models"
	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or phone
	Password   string `json:"password" binding:"required"`
}

type AuthController struct {
	Accounts  *services.AccountService
	JWTSecret string
	TokenTTL  time.Duration
	Secure    bool
	Logger    *zap.Logger
}

// Register creates a salon together with its owner account
func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, salon, err := ac.Accounts.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, ac.Logger, err)
		return
	}

	token, ok := ac.issueToken(c, user)
	if !ok {
		return
	}
	utils.RespondWithData(c, http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user":    userSummary(user, salon.Name),
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := ac.Accounts.Login(c.Request.Context(), input.Identifier, input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		respondError(c, ac.Logger, err)
		return
	}

	token, ok := ac.issueToken(c, user)
	if !ok {
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{
		"token": token,
		"user":  userSummary(user, ""),
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	user, err := ac.Accounts.GetUser(c.Request.Context(), userID)
	if err != nil {
		var nf *services.NotFoundError
		if errors.As(err, &nf) {
			utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
			return
		}
		respondError(c, ac.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"user": userSummary(user, "")})
}

// CreateStaff adds a manager or professional login to the caller's salon
func (ac *AuthController) CreateStaff(c *gin.Context) {
	salonID, ok := salonFromContext(c)
	if !ok {
		return
	}
	var input services.StaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	user, err := ac.Accounts.CreateStaff(c.Request.Context(), salonID, input)
	if err != nil {
		respondError(c, ac.Logger, err)
		return
	}
	utils.RespondWithData(c, http.StatusCreated, userSummary(user, ""))
}

// issueToken signs a JWT and mirrors it into an http-only cookie.
func (ac *AuthController) issueToken(c *gin.Context, user *models.User) (string, bool) {
	token, err := utils.GenerateToken(user.ID.String(), user.SalonID.String(), user.Role, ac.JWTSecret, ac.TokenTTL)
	if err != nil {
		ac.Logger.Error("failed to generate token", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return "", false
	}
	c.SetCookie("token", token, int(ac.TokenTTL.Seconds()), "/", "", ac.Secure, true)
	return token, true
}

func userSummary(user *models.User, salonName string) gin.H {
	summary := gin.H{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"phone":   user.Phone,
		"role":    user.Role,
		"salonId": user.SalonID,
	}
	if salonName != "" {
		summary["salonName"] = salonName
	}
	if user.ProfessionalID != nil {
		summary["professionalId"] = user.ProfessionalID
	}
	return summary
}
