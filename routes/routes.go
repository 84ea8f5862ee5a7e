package routes

import (
	"net/http"
	"time"

	"salonpro-booking/config"
	"salonpro-booking/controllers"
	"salonpro-booking/models"
	"salonpro-booking/services"
	"salonpro-booking/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Catalog      *services.Catalog
	Availability *services.AvailabilityService
	Bookings     *services.BookingService
	Requests     *services.AppointmentRequestService
	Commissions  *services.CommissionService
	Reports      *services.ReportService
	Reminders    *services.ReminderService
	Accounts     *services.AccountService
}

func SetupRouter(cfg *config.Config, logger *zap.Logger, svc Services, limiter *utils.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(config.PerformanceLogger(logger, time.Duration(cfg.SlowRequestMillis)*time.Millisecond))

	r.GET("/health", func(c *gin.Context) {
		utils.RespondWithData(c, http.StatusOK, gin.H{"status": "ok"})
	})

	booking := &controllers.BookingController{
		Catalog:      svc.Catalog,
		Availability: svc.Availability,
		Bookings:     svc.Bookings,
		Requests:     svc.Requests,
		Logger:       logger,
	}
	limit := limiter.Middleware()

	salon := r.Group("/salon/:id")
	{
		salon.GET("/info", booking.GetInfo)
		salon.GET("/services", booking.GetServices)
		salon.GET("/professionals", booking.GetProfessionals)
		salon.GET("/availability", booking.GetAvailability)
		salon.POST("/booking", limit, booking.CreateBooking)
		salon.DELETE("/booking/:appointmentId", limit, booking.CancelBooking)
		salon.GET("/bookings", booking.ListBookings)
		salon.GET("/booking/code/:code", booking.GetBookingByCode)
		salon.POST("/requests", limit, booking.CreateRequest)
		salon.DELETE("/requests/:requestId", limit, booking.CancelRequest)
	}

	authController := &controllers.AuthController{
		Accounts:  svc.Accounts,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.JWTExpiry,
		Secure:    cfg.IsProduction(),
		Logger:    logger,
	}
	requireAuth := utils.AuthMiddleware(cfg.JWTSecret)

	auth := r.Group("/auth")
	{
		auth.POST("/register", limit, authController.Register)
		auth.POST("/login", limit, authController.Login)
		auth.GET("/me", requireAuth, authController.Me)
	}

	managers := utils.RequireRole(models.RoleOwner, models.RoleManager)
	owners := utils.RequireRole(models.RoleOwner)

	api := r.Group("/api")
	api.Use(requireAuth)
	{
		requestController := &controllers.RequestController{Requests: svc.Requests, Logger: logger}
		requests := api.Group("/requests")
		{
			requests.GET("", requestController.ListRequests)
			requests.POST("/:id/approve", managers, requestController.ApproveRequest)
			requests.POST("/:id/reject", managers, requestController.RejectRequest)
		}

		appointmentController := &controllers.AppointmentController{Bookings: svc.Bookings, Logger: logger}
		appointments := api.Group("/appointments")
		{
			appointments.GET("", appointmentController.GetAgenda)
			appointments.POST("/:id/complete", appointmentController.CompleteAppointment)
			appointments.POST("/:id/cancel", appointmentController.CancelAppointment)
		}

		blockedController := &controllers.BlockedSlotController{Catalog: svc.Catalog, Logger: logger}
		blocked := api.Group("/blocked-slots")
		{
			blocked.GET("", blockedController.GetBlockedSlots)
			blocked.POST("", blockedController.CreateBlockedSlot)
			blocked.DELETE("/:id", blockedController.DeleteBlockedSlot)
		}

		commissionController := &controllers.CommissionController{Commissions: svc.Commissions, Logger: logger}
		commissions := api.Group("/commissions", managers)
		{
			commissions.GET("", commissionController.ListCommissions)
			commissions.GET("/:id", commissionController.GetCommission)
			commissions.POST("/recalculate", commissionController.Recalculate)
			commissions.POST("/:id/payments", owners, commissionController.RegisterPayment)
		}

		serviceController := &controllers.ServiceController{Catalog: svc.Catalog, Logger: logger}
		catalog := api.Group("/services")
		{
			catalog.GET("", serviceController.GetServices)
			catalog.GET("/:id", serviceController.GetService)
			catalog.POST("", managers, serviceController.CreateService)
			catalog.PUT("/:id", managers, serviceController.UpdateService)
			catalog.DELETE("/:id", managers, serviceController.DeleteService)
		}

		professionalController := &controllers.ProfessionalController{Catalog: svc.Catalog, Logger: logger}
		professionals := api.Group("/professionals")
		{
			professionals.GET("", professionalController.GetProfessionals)
			professionals.POST("", managers, professionalController.CreateProfessional)
			professionals.PUT("/:id", managers, professionalController.UpdateProfessional)
		}

		clientController := &controllers.ClientController{Catalog: svc.Catalog, Logger: logger}
		api.GET("/clients", clientController.GetClients)
		api.GET("/clients/:id", clientController.GetClient)

		api.POST("/staff", owners, authController.CreateStaff)

		profileController := &controllers.ProfileController{Catalog: svc.Catalog, Logger: logger}
		api.GET("/profile", profileController.GetProfile)
		api.PUT("/profile", owners, profileController.UpdateProfile)
		api.PUT("/profile/working-hours", managers, profileController.UpdateWorkingHours)

		reportController := &controllers.ReportController{Reports: svc.Reports, Logger: logger}
		api.GET("/dashboard", reportController.GetDashboardOverview)
		api.GET("/reports", managers, reportController.GetReportAnalytics)

		if svc.Reminders != nil {
			reminderController := &controllers.ReminderController{Reminders: svc.Reminders, Logger: logger}
			api.POST("/reminders/send", managers, reminderController.SendReminders)
			api.GET("/reminders/logs", managers, reminderController.GetReminderLogs)
		}
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
