package services

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/veritas-social/ranker/pkg/internal/database"
)

func DoAutoDatabaseCleanup() {
	days := viper.GetInt("cleanup.retention_days")
	if days <= 0 {
		days = 30
	}
	deadline := time.Now().AddDate(0, 0, -days)
	log.Debug().Time("deadline", deadline).Msg("Now cleaning up entire database...")

	var count int64
	for _, model := range database.AutoMaintainRange {
		tx := database.C.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", deadline).
			Delete(model)
		if tx.Error != nil {
			log.Error().Err(tx.Error).Msg("An error occurred when running auto maintenance...")
		}
		count += tx.RowsAffected
	}

	log.Debug().Int64("affected", count).Msg("Clean up entire database accomplished.")
}
