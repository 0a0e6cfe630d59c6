package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/samber/lo"
	localCache "github.com/veritas-social/ranker/pkg/internal/cache"
	"github.com/veritas-social/ranker/pkg/internal/database"
	"github.com/veritas-social/ranker/pkg/internal/models"
)

// Two fame values within this distance count as a match.
const SimilarityWindow = 100

type UserSimilarity struct {
	User       models.User `json:"user"`
	Similarity float64     `json:"similarity"`
}

func getSimilarUsersCacheKey(userId uint) string {
	return fmt.Sprintf("similar-users#%d", userId)
}

// SimilarUsers scores every other user by the share of the given user's fame
// areas where both hold values within the similarity window; a missing record
// never matches. Zero scores are dropped; the rest sort by similarity, then
// by most recently joined. Results are cached until the ledger changes.
func SimilarUsers(user models.User) ([]UserSimilarity, error) {
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	ctx := context.Background()

	cacheKey := getSimilarUsersCacheKey(user.ID)
	if hit, err := marshal.Get(ctx, cacheKey, new([]UserSimilarity)); err == nil {
		return *(hit.(*[]UserSimilarity)), nil
	}

	var mine []models.Fame
	if err := database.C.Where("user_id = ?", user.ID).
		Preload("FameLevel").
		Find(&mine).Error; err != nil {
		return nil, err
	}
	if len(mine) == 0 {
		return nil, nil
	}

	myLevels := lo.SliceToMap(mine, func(item models.Fame) (uint, int) {
		return item.ExpertiseAreaID, item.FameLevel.NumericValue
	})

	// One read of the ledger so every comparison sees the same snapshot.
	var records []models.Fame
	if err := database.C.
		Where("expertise_area_id IN ? AND user_id <> ?", lo.Keys(myLevels), user.ID).
		Preload("FameLevel").
		Find(&records).Error; err != nil {
		return nil, err
	}

	levelsByUser := map[uint]map[uint]int{}
	for _, record := range records {
		if levelsByUser[record.UserID] == nil {
			levelsByUser[record.UserID] = map[uint]int{}
		}
		levelsByUser[record.UserID][record.ExpertiseAreaID] = record.FameLevel.NumericValue
	}

	var others []models.User
	if err := database.C.Where("id <> ?", user.ID).Find(&others).Error; err != nil {
		return nil, err
	}

	var out []UserSimilarity
	for _, other := range others {
		matching := 0
		for area, level := range myLevels {
			theirs, ok := levelsByUser[other.ID][area]
			if !ok {
				continue
			}
			if distance(level, theirs) <= SimilarityWindow {
				matching++
			}
		}
		if matching == 0 {
			continue
		}
		out = append(out, UserSimilarity{
			User:       other,
			Similarity: float64(matching) / float64(len(myLevels)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].User.CreatedAt.After(out[j].User.CreatedAt)
	})

	_ = marshal.Set(
		ctx,
		cacheKey,
		out,
		store.WithExpiration(5*time.Minute),
		store.WithTags([]string{"similar-users"}),
	)

	return out, nil
}

// FlushSimilarityCache drops every cached similarity ranking; called on any
// fame ledger write.
func FlushSimilarityCache() {
	if localCache.S == nil {
		return
	}
	cacheManager := cache.New[any](localCache.S)
	_ = cacheManager.Invalidate(context.Background(), store.WithInvalidateTags([]string{"similar-users"}))
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
