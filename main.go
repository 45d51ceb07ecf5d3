package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/config"
	"github.com/yeremiapane/restaurant-tables/live"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/router"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
	"gorm.io/gorm"
)

func init() {
	utils.InitLogger()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.SetLevel(cfg.LogLevel)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	pruner := services.NewActivityPruner(db, cfg.ActivityRetention, cfg.ActivityPruneInterval, utils.InfoLogger)
	pruner.Start()
	defer pruner.Stop()

	hub := live.NewHub(utils.InfoLogger)
	recorder := services.NewActivityRecorder(db, hub, utils.ErrorLogger)
	api := services.NewTableAPIClient(cfg.API.BaseURL, cfg.API.Resource, cfg.API.Timeout, utils.InfoLogger)
	screens := services.NewScreenRegistry(api, recorder, utils.InfoLogger, cfg.NotificationTTL)
	screens.StartIdleSweep(cfg.ScreenSweepInterval, cfg.ScreenIdleTTL)
	defer screens.Stop()

	r := router.SetupRouter(screens, recorder, hub, router.Options{
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		RateLimitPerSecond:    cfg.RateLimitPerSecond,
		MutationRatePerMinute: cfg.MutationRatePerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.InfoLogger.Printf("Listening on port %s (table API %s/api/%s)", cfg.Port, cfg.API.BaseURL, cfg.API.Resource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Graceful shutdown failed: %v", err)
	}
}

func autoMigrate(db *gorm.DB) {
	if err := db.AutoMigrate(&models.ActivityLog{}); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
