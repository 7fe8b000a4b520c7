package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"moviedb/internal/client/tmdb"
	"moviedb/internal/config"
	cronrunner "moviedb/internal/cron"
	"moviedb/internal/db"
	"moviedb/internal/handler"
	"moviedb/internal/logger"
	gormrepo "moviedb/internal/repository/gorm"
	"moviedb/internal/seeder"
	"moviedb/internal/service"
)

func main() {
	cfgPath := os.Getenv("MDB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("MDB_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	tmdbHTTP := &http.Client{Timeout: cfg.TMDB.Timeout}
	tmdbClient := tmdb.NewClient(tmdbHTTP, cfg.TMDB.BaseURL, cfg.TMDB.BearerToken)
	store := gormrepo.New(dbConn.Gorm)
	seedSvc := seeder.New(store, tmdbClient, logger, cfg.Seed)
	queryService := service.NewCatalogQueryService(store, logger)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(engine)
	catalogHandler := &handler.CatalogHandler{
		QueryService: queryService,
		Logger:       logger,
	}
	catalogHandler.Register(engine)
	seedHandler := &handler.SeedHandler{
		Seeder:       seedSvc,
		QueryService: queryService,
		Logger:       logger,
	}
	seedHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.SeedSync, func(ctx context.Context) {
			if cfg.Seed.SeedGenres {
				if err := seedSvc.SeedGenres(ctx); err != nil {
					logger.Warn("cron genre seed failed", zap.Error(err))
				}
			}
			if err := seedSvc.SeedPopular(ctx); err != nil {
				logger.Warn("cron popular seed failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register seed sync failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
