package database

import (
	"github.com/veritas-social/ranker/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.User{},
	&models.ExpertiseArea{},
	&models.FameLevel{},
	&models.Fame{},
	&models.Post{},
	&models.PostClassification{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.PostRating{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
