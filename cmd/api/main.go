package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/niranjan-aware/resonance-system/internal/config"
	"github.com/niranjan-aware/resonance-system/internal/database"
	"github.com/niranjan-aware/resonance-system/internal/integrations/googlesync"
	"github.com/niranjan-aware/resonance-system/internal/integrations/whatsapp"
	"github.com/niranjan-aware/resonance-system/internal/jobs"
	"github.com/niranjan-aware/resonance-system/internal/middleware"
	"github.com/niranjan-aware/resonance-system/internal/modules/booking"
	"github.com/niranjan-aware/resonance-system/internal/modules/catalog"
	"github.com/niranjan-aware/resonance-system/internal/modules/notification"
	"github.com/niranjan-aware/resonance-system/internal/modules/reminder"
	"github.com/niranjan-aware/resonance-system/internal/pkg/jwt"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
	"github.com/niranjan-aware/resonance-system/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.ErrorLogger.Fatalf("loading config: %v", err)
	}
	logger.Init(cfg.LogFile)

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.ErrorLogger.Fatalf("connecting database: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		logger.ErrorLogger.Fatalf("migrating schema: %v", err)
	}

	reservations := repository.NewReservationRepository(db)
	studios := repository.NewStudioRepository(db)
	customers := repository.NewCustomerRepository(db)
	attempts := repository.NewNotificationLogRepository(db)

	ctx := context.Background()

	var chat notification.ChatSender
	if cfg.WhatsApp.AccessToken != "" && cfg.WhatsApp.PhoneNumberID != "" {
		chat = whatsapp.NewClient(cfg.WhatsApp, cfg.ChannelTimeout)
	} else {
		logger.InfoLogger.Info("WhatsApp credentials missing, chat channel disabled")
	}

	var calendarSync notification.CalendarSync
	if cal, err := googlesync.NewCalendarService(ctx, cfg.Google, cfg.Timezone); err != nil {
		logger.ErrorLogger.Errorf("calendar integration disabled: %v", err)
	} else if cal != nil {
		calendarSync = cal
	}

	var sheetLog notification.SheetLog
	if sheet, err := googlesync.NewSheetService(ctx, cfg.Google, cfg.Timezone); err != nil {
		logger.ErrorLogger.Errorf("sheets integration disabled: %v", err)
	} else if sheet != nil {
		sheetLog = sheet
	}

	dispatcher := notification.NewDispatcher(
		chat, calendarSync, sheetLog, attempts, reservations,
		cfg.WhatsApp.Templates, cfg.ChannelTimeout,
	)

	bookingService := booking.NewService(
		reservations, studios, customers, dispatcher,
		cfg.Timezone, cfg.TaxRate,
		booking.PenaltyRules{
			LateCutoffHours: cfg.LateCutoffHours,
			LateAmount:      cfg.LatePenalty,
			NoShowAmount:    cfg.NoShowPenalty,
		},
	)
	catalogService := catalog.NewService(studios)

	scanner := reminder.NewScanner(reservations, dispatcher, cfg.Timezone, cfg.ReminderTolerance)
	sweeper := jobs.NewRetentionSweeper(reservations, calendarSync, cfg.RetentionDays)
	runner, err := jobs.Start(scanner, sweeper, cfg.ReminderInterval, cfg.Timezone)
	if err != nil {
		logger.ErrorLogger.Fatalf("starting background jobs: %v", err)
	}
	defer runner.Stop()

	jwtService := jwt.New(cfg.JWTSecret, 24*time.Hour)

	bookingHandler := booking.NewHandler(bookingService)
	catalogHandler := catalog.NewHandler(catalogService)
	notificationHandler := notification.NewHandler(attempts, cfg.WhatsApp.VerifyToken)

	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.CORS())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	bookingHandler.RegisterRoutes(api)
	catalogHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)

	admin := api.Group("/admin", middleware.AdminAuth(jwtService))
	bookingHandler.RegisterAdminRoutes(admin)
	notificationHandler.RegisterAdminRoutes(admin)

	logger.InfoLogger.Infof("listening on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.ErrorLogger.Fatalf("server stopped: %v", err)
	}
}
