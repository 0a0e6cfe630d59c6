package services

import (
	"errors"
	"fmt"

	"github.com/veritas-social/ranker/pkg/internal/database"
	"github.com/veritas-social/ranker/pkg/internal/models"
	"gorm.io/gorm"
)

type RatingOutcome struct {
	Rated bool   `json:"rated"`
	Type  string `json:"type"`
}

// RatePost upserts the (user, post, rating type) score. Authors cannot rate
// their own posts; the check runs before any mutation.
func RatePost(user models.User, post models.Post, ratingType string, score int) (RatingOutcome, error) {
	if user.ID == post.AuthorID {
		return RatingOutcome{}, fmt.Errorf("%w: you cannot rate your own post", ErrPermissionDenied)
	}

	var rating models.PostRating
	if err := database.C.
		Where("user_id = ? AND post_id = ? AND rating_type = ?", user.ID, post.ID, ratingType).
		First(&rating).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return RatingOutcome{}, err
		}

		rating = models.PostRating{
			UserID:      user.ID,
			PostID:      post.ID,
			RatingType:  ratingType,
			RatingScore: score,
		}
		if err := database.C.Create(&rating).Error; err != nil {
			return RatingOutcome{}, err
		}
		return RatingOutcome{Rated: true, Type: "new"}, nil
	}

	if err := database.C.Model(&rating).Update("rating_score", score).Error; err != nil {
		return RatingOutcome{}, err
	}
	return RatingOutcome{Rated: true, Type: "update"}, nil
}
