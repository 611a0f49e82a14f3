package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/mkrhub/controlhub/internal/api/v1"
	"github.com/mkrhub/controlhub/internal/auth"
	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/rest/middleware"
	"github.com/mkrhub/controlhub/internal/sentry"
)

type Handlers struct {
	Health    *v1.HealthHandler
	Auth      *v1.AuthHandler
	Invoice   *v1.InvoiceHandler
	Payment   *v1.PaymentHandler
	Document  *v1.DocumentHandler
	Dashboard *v1.DashboardHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	sentry *sentry.Service,
	principals *auth.PrincipalResolver,
) *gin.Engine {
	router := gin.Default()
	router.Use(
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware(cfg),
		middleware.SentryMiddleware(cfg),
		middleware.PyroscopeMiddleware(cfg),
		middleware.ErrorHandler(sentry, logger),
	)

	router.GET("/health", handlers.Health.Health)

	v1Public := router.Group("/v1")
	v1Private := router.Group("/v1")
	v1Private.Use(middleware.AuthenticateMiddleware(cfg, principals, logger))

	// Auth routes
	authPublic := v1Public.Group("/auth")
	{
		authPublic.POST("/login", middleware.RateLimitMiddleware(cfg.Auth.LoginRatePerMin), handlers.Auth.Login)
		// logout clears the cookie even when the session is already gone
		authPublic.POST("/logout", handlers.Auth.Logout)
	}
	v1Private.GET("/me", handlers.Auth.Me)

	v1Private.GET("/dashboard", handlers.Dashboard.GetDashboard)

	invoices := v1Private.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id", handlers.Invoice.UpdateInvoice)

		invoices.POST("/:id/payments", handlers.Payment.AddPayment)
		invoices.GET("/:id/payments", handlers.Payment.ListPayments)

		invoices.GET("/:id/pdf", handlers.Document.GetInvoicePDF)
		invoices.GET("/:id/print", handlers.Document.GetInvoicePrint)
	}

	return router
}
