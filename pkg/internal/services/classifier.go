package services

import (
	"os"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pemistahl/lingua-go"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/veritas-social/ranker/pkg/internal/models"
	"gorm.io/gorm"
)

// Truth rating tiers assigned by the classifier. They live in the same
// fame_levels table the ledger uses, so the sign of their numeric value is
// what the submission orchestrator reacts to.
const (
	TruthRatingCredible = "Pro"
	TruthRatingDoubtful = "Doubter"
	TruthRatingBullshit = "Bullshitter"
)

var defaultDoubtMarkers = []string{
	"allegedly",
	"i heard",
	"some say",
	"unverified",
}

var defaultBullshitMarkers = []string{
	"miracle cure",
	"wake up sheeple",
	"they don't want you to know",
	"proven by no one",
}

var languageDetector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.French, lingua.German, lingua.Spanish).
		Build()
})

func DetectLanguage(content string) string {
	if lang, ok := languageDetector().DetectLanguageOf(content); ok {
		return strings.ToLower(lang.IsoCode639_1().String())
	}
	return "unknown"
}

type classifierRules struct {
	Areas           map[string][]string `json:"areas"`
	DoubtMarkers    []string            `json:"doubt_markers"`
	BullshitMarkers []string            `json:"bullshit_markers"`
}

func loadClassifierRules() classifierRules {
	var rules classifierRules
	path := viper.GetString("classifier.rules_path")
	if len(path) == 0 {
		return rules
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("An error occurred when reading classifier rules...")
		return rules
	}
	if err := jsoniter.Unmarshal(raw, &rules); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("An error occurred when parsing classifier rules...")
	}
	return rules
}

func containsAnyMarker(probe string, markers []string) bool {
	return lo.SomeBy(markers, func(marker string) bool {
		return strings.Contains(probe, strings.ToLower(marker))
	})
}

// ClassifyContent matches the content against every expertise area's keyword
// set and assigns each matched area a truth rating. The second return value
// reports whether any matched area was rated as bullshit.
func ClassifyContent(tx *gorm.DB, content string) ([]models.PostClassification, bool, error) {
	probe := strings.ToLower(content)
	rules := loadClassifierRules()

	doubtMarkers := append(rules.DoubtMarkers, defaultDoubtMarkers...)
	bullshitMarkers := append(rules.BullshitMarkers, defaultBullshitMarkers...)

	bullshit := containsAnyMarker(probe, bullshitMarkers)
	doubtful := containsAnyMarker(probe, doubtMarkers)

	ratingName := TruthRatingCredible
	if bullshit {
		ratingName = TruthRatingBullshit
	} else if doubtful {
		ratingName = TruthRatingDoubtful
	}

	var areas []models.ExpertiseArea
	if err := tx.Order("id ASC").Find(&areas).Error; err != nil {
		return nil, false, err
	}

	var out []models.PostClassification
	for _, area := range areas {
		keywords := append([]string(area.Keywords), rules.Areas[area.Alias]...)
		if !containsAnyMarker(probe, keywords) {
			continue
		}

		var rating models.FameLevel
		if err := tx.Where("name = ?", ratingName).First(&rating).Error; err != nil {
			return nil, false, err
		}

		out = append(out, models.PostClassification{
			ExpertiseAreaID: area.ID,
			ExpertiseArea:   area,
			TruthRatingID:   &rating.ID,
			TruthRating:     &rating,
			Bullshit:        bullshit,
		})
	}

	return out, bullshit && len(out) > 0, nil
}
