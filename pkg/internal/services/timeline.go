package services

import (
	"strings"

	"github.com/veritas-social/ranker/pkg/internal/database"
	"github.com/veritas-social/ranker/pkg/internal/models"
	"gorm.io/gorm"
)

// FilterPostWithFollowing keeps posts authored by someone the user follows
// and matching the requested published flag, plus every post of the user
// themselves regardless of that flag.
func FilterPostWithFollowing(tx *gorm.DB, user models.User, published bool) *gorm.DB {
	follows := database.C.Table("user_follows").
		Select("target_id").
		Where("user_id = ?", user.ID)
	return tx.Where(
		"(posts.author_id IN (?) AND posts.published = ?) OR posts.author_id = ?",
		follows, published, user.ID,
	)
}

// FilterPostWithCommunity keeps posts whose classified areas intersect both
// the viewer's and the author's community memberships. Unpublished posts stay
// visible to their author.
func FilterPostWithCommunity(tx *gorm.DB, user models.User, published bool) *gorm.DB {
	return tx.
		Joins("JOIN post_classifications ON post_classifications.post_id = posts.id").
		Joins(
			"JOIN user_communities viewer_communities ON viewer_communities.expertise_area_id = post_classifications.expertise_area_id AND viewer_communities.user_id = ?",
			user.ID,
		).
		Joins("JOIN user_communities author_communities ON author_communities.expertise_area_id = post_classifications.expertise_area_id AND author_communities.user_id = posts.author_id").
		Where("posts.published = ? OR posts.author_id = ?", published, user.ID).
		Distinct("posts.*")
}

func ListOrderedPosts(tx *gorm.DB, take int, offset int) ([]models.Post, error) {
	if take >= 0 {
		tx = tx.Limit(take)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}

	var items []models.Post
	if err := tx.
		Preload("Author").
		Preload("Classifications").
		Preload("Classifications.ExpertiseArea").
		Order("posts.created_at DESC, posts.id ASC").
		Find(&items).Error; err != nil {
		return items, err
	}
	return items, nil
}

// Timeline returns the reverse-chronological feed visible to the user,
// sliced to the inclusive [start, end] window. Out-of-range windows yield an
// empty result, never an error.
func Timeline(user models.User, start int, end *int, published bool, communityMode bool) ([]models.Post, error) {
	if end != nil && *end < start {
		return nil, nil
	}

	tx := database.C.Model(&models.Post{})
	if communityMode {
		tx = FilterPostWithCommunity(tx, user, published)
	} else {
		tx = FilterPostWithFollowing(tx, user, published)
	}

	take := -1
	if end != nil {
		take = *end - start + 1
	}
	return ListOrderedPosts(tx, take, start)
}

// SearchPosts matches the keyword case-insensitively against post content and
// the author's email and names. LOWER(...) LIKE keeps the predicate portable
// across postgres and the sqlite test harness.
func SearchPosts(keyword string, start int, end *int, published bool) ([]models.Post, error) {
	if end != nil && *end < start {
		return nil, nil
	}

	probe := "%" + strings.ToLower(keyword) + "%"
	tx := database.C.Model(&models.Post{}).
		Joins("JOIN users ON users.id = posts.author_id").
		Where("posts.published = ?", published).
		Where(
			"LOWER(posts.content) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ?",
			probe, probe, probe, probe,
		)

	take := -1
	if end != nil {
		take = *end - start + 1
	}
	return ListOrderedPosts(tx, take, start)
}
