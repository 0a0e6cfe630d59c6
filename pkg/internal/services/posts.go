package services

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/veritas-social/ranker/pkg/internal/database"
	"github.com/veritas-social/ranker/pkg/internal/models"
	"gorm.io/gorm"
)

var validate = validator.New()

type postDraft struct {
	Content string `validate:"required,max=4096"`
}

type PostOutcome struct {
	Published bool `json:"published"`
	ID        uint `json:"id"`
}

func GetPost(id uint) (models.Post, error) {
	var post models.Post
	if err := database.C.
		Preload("Author").
		Preload("Classifications").
		Preload("Classifications.ExpertiseArea").
		Preload("Classifications.TruthRating").
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, ErrNotFound
		}
		return post, err
	}
	return post, nil
}

// SubmitPost persists the post, classifies it, and settles the consequences
// in one pass: publication is withheld when the classifier found bullshit or
// the author already holds negative fame in one of the classified areas,
// negative truth ratings demote the author's fame per area, and any fame now
// below the top tier costs the matching community membership. The whole
// sequence runs inside one transaction on the author's write path.
//
// Returns the outcome, the classifications, and whether the author got
// banned along the way (callers should terminate the author's session then).
func SubmitPost(user models.User, content string, citeID, replyID *uint) (PostOutcome, []models.PostClassification, bool, error) {
	if err := validate.Struct(postDraft{Content: content}); err != nil {
		return PostOutcome{}, nil, false, err
	}

	log.Debug().Uint("author", user.ID).Msg("Submitting a post...")
	start := time.Now()

	var post models.Post
	var classifications []models.PostClassification
	banned := false

	err := database.C.Transaction(func(tx *gorm.DB) error {
		post = models.Post{
			Content:  content,
			Language: DetectLanguage(content),
			AuthorID: user.ID,
			CiteID:   citeID,
			ReplyID:  replyID,
		}
		if err := tx.Create(&post).Error; err != nil {
			return err
		}

		var hasBullshit bool
		var err error
		classifications, hasBullshit, err = ClassifyContent(tx, content)
		if err != nil {
			return err
		}

		post.Published = !hasBullshit

		for idx := range classifications {
			classifications[idx].PostID = post.ID
			if err := tx.Create(&classifications[idx]).Error; err != nil {
				return err
			}

			area := classifications[idx].ExpertiseArea

			// An author already in disgrace in one of the post's areas keeps
			// the post off the feed, whatever the new rating says.
			negative, err := hasNegativeFame(tx, user, area)
			if err != nil {
				return err
			}
			if negative {
				post.Published = false
			}

			if rating := classifications[idx].TruthRating; rating != nil && rating.NumericValue < 0 {
				wasBanned, err := ApplyNegativeTruthRating(tx, user, area)
				if err != nil {
					return err
				}
				banned = banned || wasBanned
			}

			if err := evictWhenBelowTopTier(tx, user, area); err != nil {
				return err
			}
		}

		return tx.Model(&post).Update("published", post.Published).Error
	})
	if err != nil {
		return PostOutcome{}, nil, false, err
	}

	log.Debug().
		Dur("elapsed", time.Since(start)).
		Uint("post", post.ID).
		Bool("published", post.Published).
		Msg("The post is submitted.")

	return PostOutcome{Published: post.Published, ID: post.ID}, classifications, banned, nil
}

func hasNegativeFame(tx *gorm.DB, user models.User, area models.ExpertiseArea) (bool, error) {
	var count int64
	err := tx.Model(&models.Fame{}).
		Joins("JOIN fame_levels ON fame_levels.id = fames.fame_level_id").
		Where("fames.user_id = ? AND fames.expertise_area_id = ?", user.ID, area.ID).
		Where("fame_levels.numeric_value < 0").
		Count(&count).Error
	return count > 0, err
}
