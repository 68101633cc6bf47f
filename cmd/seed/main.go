// Seeds the local database with the Sinhgad Road studios. Safe to re-run:
// existing studios are left untouched.
package main

import (
	"context"

	"github.com/niranjan-aware/resonance-system/internal/config"
	"github.com/niranjan-aware/resonance-system/internal/database"
	"github.com/niranjan-aware/resonance-system/internal/domain"
	"github.com/niranjan-aware/resonance-system/internal/pkg/logger"
	"github.com/niranjan-aware/resonance-system/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.ErrorLogger.Fatalf("loading config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.ErrorLogger.Fatalf("connecting database: %v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		logger.ErrorLogger.Fatalf("migrating schema: %v", err)
	}

	studios := repository.NewStudioRepository(db)
	ctx := context.Background()

	existing, err := studios.ListActive(ctx)
	if err != nil {
		logger.ErrorLogger.Fatalf("listing studios: %v", err)
	}
	if len(existing) > 0 {
		logger.InfoLogger.Infof("found %d studios, nothing to seed", len(existing))
		return
	}

	seed := []domain.Studio{
		{
			Name:        "Studio A - Resonance Sinhgad Road",
			Size:        domain.StudioSmall,
			Capacity:    6,
			Description: "Compact room for karaoke and small jam sessions",
			HourlyRate:  600,
			OpenTime:    "08:00",
			CloseTime:   "22:00",
			IsActive:    true,
		},
		{
			Name:        "Studio B - Resonance Sinhgad Road",
			Size:        domain.StudioMedium,
			Capacity:    10,
			Description: "Mid-size room with live instrument setup",
			HourlyRate:  800,
			OpenTime:    "08:00",
			CloseTime:   "22:00",
			IsActive:    true,
		},
		{
			Name:        "Studio C - Resonance Sinhgad Road",
			Size:        domain.StudioLarge,
			Capacity:    18,
			Description: "Full band room with recording and video rigs",
			HourlyRate:  1000,
			OpenTime:    "08:00",
			CloseTime:   "22:00",
			IsActive:    true,
		},
	}

	for i := range seed {
		if err := studios.Create(ctx, &seed[i]); err != nil {
			logger.ErrorLogger.Fatalf("seeding studio %q: %v", seed[i].Name, err)
		}
		logger.InfoLogger.Infof("seeded studio %q (id=%d)", seed[i].Name, seed[i].ID)
	}
}
