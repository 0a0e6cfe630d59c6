package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/veritas-social/ranker/pkg/internal/database"
	"github.com/veritas-social/ranker/pkg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The reference ladder. Seeded at boot; FirstOrCreate keeps reruns harmless.
var fameLadder = []models.FameLevel{
	{Name: models.FameLevelSuperPro, NumericValue: 100},
	{Name: "Pro", NumericValue: 50},
	{Name: "Apprentice", NumericValue: 10},
	{Name: "Doubter", NumericValue: -5},
	{Name: models.FameLevelFloorName, NumericValue: models.FameLevelFloorValue},
	{Name: "Dilettante", NumericValue: -20},
	{Name: "Bullshitter", NumericValue: -100},
}

func SeedFameLevels(tx *gorm.DB) error {
	for _, tier := range fameLadder {
		level := tier
		if err := tx.Where("name = ?", tier.Name).FirstOrCreate(&level).Error; err != nil {
			return fmt.Errorf("unable to seed fame level %s: %v", tier.Name, err)
		}
	}
	return nil
}

func GetFame(user models.User) (models.User, []models.Fame, error) {
	var out models.User
	if err := database.C.Where("id = ?", user.ID).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, nil, fmt.Errorf("%w: user #%d", ErrNotFound, user.ID)
		}
		return out, nil, err
	}

	var records []models.Fame
	err := database.C.Where("user_id = ?", out.ID).
		Preload("ExpertiseArea").
		Preload("FameLevel").
		Find(&records).Error
	return out, records, err
}

// NextLowerFameLevel resolves the immediate predecessor in the total order of
// tiers; ErrNotFound means the given tier is already the floor.
func NextLowerFameLevel(tx *gorm.DB, level models.FameLevel) (models.FameLevel, error) {
	var lower models.FameLevel
	if err := tx.Where("numeric_value < ?", level.NumericValue).
		Order("numeric_value DESC").
		First(&lower).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lower, fmt.Errorf("%w: no tier below %s", ErrNotFound, level.Name)
		}
		return lower, err
	}
	return lower, nil
}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	// sqlite has no row locks; concurrent ledger writes only happen on postgres
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ApplyNegativeTruthRating advances the (user, area) ledger entry one step on
// a negative truth rating: create at the floor tier on first offense, step
// down one tier otherwise, or ban the user when there is nothing lower left.
// Returns whether the user got banned.
func ApplyNegativeTruthRating(tx *gorm.DB, user models.User, area models.ExpertiseArea) (bool, error) {
	var fame models.Fame
	err := lockForUpdate(tx).
		Where("user_id = ? AND expertise_area_id = ?", user.ID, area.ID).
		First(&fame).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		floor := models.FameLevel{
			Name:         models.FameLevelFloorName,
			NumericValue: models.FameLevelFloorValue,
		}
		if err := tx.Where("name = ?", floor.Name).FirstOrCreate(&floor).Error; err != nil {
			return false, err
		}

		fame = models.Fame{UserID: user.ID, ExpertiseAreaID: area.ID, FameLevelID: floor.ID}
		if err := tx.Create(&fame).Error; err != nil {
			return false, err
		}

		log.Debug().Uint("user", user.ID).Str("area", area.Alias).Msg("First offense, fame record created at the floor tier.")
		FlushSimilarityCache()
		return false, nil
	} else if err != nil {
		return false, err
	}

	var current models.FameLevel
	if err := tx.First(&current, fame.FameLevelID).Error; err != nil {
		return false, err
	}

	lower, err := NextLowerFameLevel(tx, current)
	if errors.Is(err, ErrNotFound) {
		if err := BanUser(tx, user); err != nil {
			return false, err
		}
		return true, nil
	} else if err != nil {
		return false, err
	}

	if err := tx.Model(&fame).Update("fame_level_id", lower.ID).Error; err != nil {
		return false, err
	}

	log.Debug().Uint("user", user.ID).Str("area", area.Alias).Str("tier", lower.Name).Msg("Fame demoted one tier.")
	FlushSimilarityCache()
	return false, nil
}

// BanUser deactivates the account and unpublishes every post the user ever
// authored, regardless of area. Repeating it on an already banned user is a
// no-op by construction.
func BanUser(tx *gorm.DB, user models.User) error {
	log.Warn().Uint("user", user.ID).Msg("Banning user and unpublishing all of their posts...")

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_active", false).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Post{}).Where("author_id = ?", user.ID).
		Update("published", false).Error; err != nil {
		return err
	}

	FlushSimilarityCache()
	return nil
}

// evictWhenBelowTopTier drops the community membership matching the area once
// the user's fame there is below the top tier. Eviction is a best-effort
// consequence: missing fame or level records are silently ignored.
func evictWhenBelowTopTier(tx *gorm.DB, user models.User, area models.ExpertiseArea) error {
	var fame models.Fame
	if err := tx.Where("user_id = ? AND expertise_area_id = ?", user.ID, area.ID).
		Preload("FameLevel").
		First(&fame).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	var top models.FameLevel
	if err := tx.Where("name = ?", models.FameLevelSuperPro).First(&top).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if fame.FameLevel.NumericValue < top.NumericValue {
		return tx.Exec(
			"DELETE FROM user_communities WHERE user_id = ? AND expertise_area_id = ?",
			user.ID, area.ID,
		).Error
	}
	return nil
}

type BullshitterEntry struct {
	User             models.User `json:"user"`
	FameLevelNumeric int         `json:"fame_level_numeric"`
}

// ListBullshitters maps each expertise area holding at least one negative
// fame record to its offenders, worst fame first; ties are broken by the most
// recently joined user. Areas without offenders are omitted.
func ListBullshitters() (map[string][]BullshitterEntry, error) {
	var records []models.Fame
	if err := database.C.
		Joins("JOIN fame_levels ON fame_levels.id = fames.fame_level_id").
		Joins("JOIN users ON users.id = fames.user_id").
		Where("fame_levels.numeric_value < 0").
		Order("fame_levels.numeric_value ASC, users.created_at DESC").
		Preload("User").
		Preload("ExpertiseArea").
		Preload("FameLevel").
		Find(&records).Error; err != nil {
		return nil, err
	}

	out := make(map[string][]BullshitterEntry)
	for _, record := range records {
		out[record.ExpertiseArea.Alias] = append(out[record.ExpertiseArea.Alias], BullshitterEntry{
			User:             record.User,
			FameLevelNumeric: record.FameLevel.NumericValue,
		})
	}
	return out, nil
}
