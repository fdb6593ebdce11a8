package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/schooldb-api/api/swagger"
	"github.com/noah-isme/schooldb-api/internal/handler"
	"github.com/noah-isme/schooldb-api/internal/middleware"
	"github.com/noah-isme/schooldb-api/internal/repository"
	"github.com/noah-isme/schooldb-api/internal/routes"
	"github.com/noah-isme/schooldb-api/internal/service"
	"github.com/noah-isme/schooldb-api/pkg/cache"
	"github.com/noah-isme/schooldb-api/pkg/config"
	"github.com/noah-isme/schooldb-api/pkg/database"
	"github.com/noah-isme/schooldb-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/schooldb-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/schooldb-api/pkg/middleware/requestid"
	"github.com/noah-isme/schooldb-api/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// @title School Records API
// @version 1.0.0
// @description Students, library circulation, fees, performance, discipline and rankings for a secondary school.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(context.Background(), cfg.Database, logr)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db, logr)
		cancel()
		if err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	photos, err := storage.NewLocalStorage(cfg.Photos.StorageDir)
	if err != nil {
		return fmt.Errorf("photo storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Photos.SignedURLSecret, cfg.Photos.SignedURLTTL)

	studentRepo := repository.NewStudentRepository(db)
	bookRepo := repository.NewBookRepository(db)
	borrowRepo := repository.NewBorrowRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)
	disciplineRepo := repository.NewDisciplineRepository(db)
	userRepo := repository.NewUserRepository(db)
	blocklist := repository.NewTokenBlocklistRepository(redisClient)

	validate := service.NewValidator()
	metrics := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, blocklist, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, photos, signer, service.PhotoOptions{
		MaxFileSizeBytes: cfg.Photos.MaxFileSizeBytes,
		MaxDimension:     cfg.Photos.MaxDimension,
	}, validate, logr)
	rankingSvc := service.NewRankingService(performanceRepo, metrics, logr)

	h := routes.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Students:    handler.NewStudentHandler(studentSvc, cfg.APIPrefix),
		Books:       handler.NewBookHandler(service.NewBookService(bookRepo, validate, logr)),
		Circulation: handler.NewCirculationHandler(service.NewCirculationService(borrowRepo, studentRepo, bookRepo, metrics, validate, logr)),
		Fees:        handler.NewFeeHandler(service.NewFeeService(feeRepo, studentRepo, validate, logr)),
		Performance: handler.NewPerformanceHandler(service.NewPerformanceService(performanceRepo, studentRepo, validate, logr)),
		Discipline:  handler.NewDisciplineHandler(service.NewDisciplineService(disciplineRepo, studentRepo, validate, logr)),
		Rankings:    handler.NewRankingHandler(rankingSvc),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(service.DashboardRepositories{
			Students:    studentRepo,
			Discipline:  disciplineRepo,
			Loans:       borrowRepo,
			Fees:        feeRepo,
			Performance: performanceRepo,
		}, metrics, logr)),
		Exports: handler.NewExportHandler(service.NewExportService(rankingSvc, feeRepo, metrics, logr)),
		Users:   handler.NewUserHandler(service.NewUserService(userRepo, studentRepo, validate, logr)),
		Metrics: handler.NewMetricsHandler(metrics.Handler(), db),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.MaxMultipartMemory = cfg.Photos.MaxFileSizeBytes

	routes.Register(r, h, routes.Options{
		APIPrefix: cfg.APIPrefix,
		Auth:      middleware.JWT(authSvc),
		Audit: func(action, resource, idParam string) gin.HandlerFunc {
			return middleware.Audit(userRepo, logr, action, resource, idParam)
		},
		Logger: logr,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.Bool("token_blocklist", blocklist.Enabled()))
		serverErrors <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-stop:
		logr.Info("shutdown requested", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logr.Info("server stopped")
	return nil
}
