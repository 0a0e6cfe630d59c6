package services

import (
	"errors"
	"fmt"

	"github.com/veritas-social/ranker/pkg/internal/database"
	"github.com/veritas-social/ranker/pkg/internal/models"
	"gorm.io/gorm"
)

func GetUser(id uint) (models.User, error) {
	var user models.User
	if err := database.C.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, fmt.Errorf("%w: user #%d", ErrNotFound, id)
		}
		return user, err
	}
	return user, nil
}

func ListFollows(user models.User, start int, end *int) ([]models.User, error) {
	return listRelated(user, "user_follows.user_id", "user_follows.target_id", start, end)
}

func ListFollowers(user models.User, start int, end *int) ([]models.User, error) {
	return listRelated(user, "user_follows.target_id", "user_follows.user_id", start, end)
}

func listRelated(user models.User, ownerColumn, relatedColumn string, start int, end *int) ([]models.User, error) {
	if end != nil && *end < start {
		return nil, nil
	}

	tx := database.C.
		Joins(fmt.Sprintf("JOIN user_follows ON %s = users.id", relatedColumn)).
		Where(fmt.Sprintf("%s = ?", ownerColumn), user.ID).
		Offset(start)
	if end != nil {
		tx = tx.Limit(*end - start + 1)
	}

	var users []models.User
	err := tx.Order("users.id ASC").Find(&users).Error
	return users, err
}

// FollowUser is idempotent; it reports false when the link already exists.
func FollowUser(user models.User, target models.User) (bool, error) {
	var count int64
	if err := database.C.Table("user_follows").
		Where("user_id = ? AND target_id = ?", user.ID, target.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if err := database.C.Model(&user).Association("Follows").Append(&target); err != nil {
		return false, err
	}
	return true, nil
}

func UnfollowUser(user models.User, target models.User) (bool, error) {
	var count int64
	if err := database.C.Table("user_follows").
		Where("user_id = ? AND target_id = ?", user.ID, target.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	if err := database.C.Model(&user).Association("Follows").Delete(&target); err != nil {
		return false, err
	}
	return true, nil
}

// JoinCommunity does not check whether the user is eligible to join;
// eligibility is enforced on the way out by the fame engine.
func JoinCommunity(user models.User, community models.ExpertiseArea) (bool, error) {
	var count int64
	if err := database.C.Table("user_communities").
		Where("user_id = ? AND expertise_area_id = ?", user.ID, community.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if err := database.C.Model(&user).Association("Communities").Append(&community); err != nil {
		return false, err
	}
	return true, nil
}

func LeaveCommunity(user models.User, community models.ExpertiseArea) (bool, error) {
	var count int64
	if err := database.C.Table("user_communities").
		Where("user_id = ? AND expertise_area_id = ?", user.ID, community.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	if err := database.C.Model(&user).Association("Communities").Delete(&community); err != nil {
		return false, err
	}
	return true, nil
}
