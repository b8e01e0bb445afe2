package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/api"
	v1 "github.com/Wizard254-ux/example-driver-portal-sub000/internal/api/v1"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/billing"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/cache"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/httpclient"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/redis"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/sentry"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/service"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/validator"
	"go.uber.org/fx"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
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
			redis.NewClientFromConfig,
			cache.NewCache,

			// Billing API
			httpclient.NewClientFromConfig,
			billing.NewClient,
		),
		sentry.Module(),
	)

	// Services
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewPlanChangeService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			registerRedisHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	redisClient *redis.Client,
	planChangeService service.PlanChangeService,
) api.Handlers {
	return api.Handlers{
		Health:     v1.NewHealthHandler(redisClient, logger),
		Proration:  v1.NewProrationHandler(planChangeService, logger),
		PlanChange: v1.NewPlanChangeHandler(planChangeService, logger),
	}
}

func registerRedisHooks(lc fx.Lifecycle, redisClient *redis.Client, log *logger.Logger) {
	if redisClient == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("Closing redis client...")
			return redisClient.Close()
		},
	})
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
		startAWSLambdaAPI(r)
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

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}
