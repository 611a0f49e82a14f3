package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/mkrhub/controlhub/internal/api"
	v1 "github.com/mkrhub/controlhub/internal/api/v1"
	"github.com/mkrhub/controlhub/internal/auth"
	"github.com/mkrhub/controlhub/internal/cache"
	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/pdf"
	"github.com/mkrhub/controlhub/internal/postgres"
	"github.com/mkrhub/controlhub/internal/pyroscope"
	"github.com/mkrhub/controlhub/internal/repository"
	"github.com/mkrhub/controlhub/internal/sentry"
	"github.com/mkrhub/controlhub/internal/service"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/mkrhub/controlhub/internal/validator"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// @title MKR Control Hub API
// @version 1.0
// @description Invoices, payments and printable invoice documents
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Enter the access token in the format **Bearer &lt;token&gt;**

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Auth
			auth.NewProvider,
			auth.NewPrincipalResolver,

			// Documents
			pdf.NewGenerator,
			pdf.NewPrintRenderer,

			// Repositories
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
		),
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return log.FxEventLogger()
		}),
	)

	// Monitoring and storage
	opts = append(opts,
		sentry.Module(),
		pyroscope.Module(),
		postgres.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewAuthService,
			service.NewInvoiceService,
			service.NewPaymentService,
			service.NewDocumentService,
			service.NewDashboardService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	authService service.AuthService,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	documentService service.DocumentService,
	dashboardService service.DashboardService,
) api.Handlers {
	return api.Handlers{
		Health:    v1.NewHealthHandler(logger),
		Auth:      v1.NewAuthHandler(cfg, authService, logger),
		Invoice:   v1.NewInvoiceHandler(invoiceService, logger),
		Payment:   v1.NewPaymentHandler(paymentService, logger),
		Document:  v1.NewDocumentHandler(documentService, logger),
		Dashboard: v1.NewDashboardHandler(dashboardService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(lc, r, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startAWSLambdaAPI(lc fx.Lifecycle, r *gin.Engine, log *logger.Logger) {
	ginLambda := ginadapter.New(r)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting AWS Lambda API handler...")
			go lambda.Start(ginLambda.ProxyWithContext)
			return nil
		},
	})
}
