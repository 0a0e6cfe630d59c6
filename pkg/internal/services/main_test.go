package services_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/veritas-social/ranker/pkg/internal/cache"
	"github.com/veritas-social/ranker/pkg/internal/database"
	"github.com/veritas-social/ranker/pkg/internal/models"
	"github.com/veritas-social/ranker/pkg/internal/services"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDatabase points database.C at a fresh in-memory sqlite database,
// migrated and seeded, and resets the cache store.
func setupDatabase(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigration(db))
	database.C = db

	require.NoError(t, cache.NewStore())
	require.NoError(t, services.SeedFameLevels(db))
}

func createUser(t *testing.T, email string, joined time.Time) models.User {
	t.Helper()

	user := models.User{
		Email:     email,
		FirstName: strings.Split(email, "@")[0],
		LastName:  "Tester",
		IsActive:  true,
	}
	user.CreatedAt = joined
	require.NoError(t, database.C.Create(&user).Error)
	return user
}

func createArea(t *testing.T, alias string, keywords ...string) models.ExpertiseArea {
	t.Helper()

	area := models.ExpertiseArea{
		Alias:    alias,
		Name:     alias,
		Keywords: datatypes.NewJSONSlice(keywords),
	}
	require.NoError(t, database.C.Create(&area).Error)
	return area
}

func levelByName(t *testing.T, name string) models.FameLevel {
	t.Helper()

	var level models.FameLevel
	require.NoError(t, database.C.Where("name = ?", name).First(&level).Error)
	return level
}

func setFame(t *testing.T, user models.User, area models.ExpertiseArea, levelName string) models.Fame {
	t.Helper()

	level := levelByName(t, levelName)
	fame := models.Fame{UserID: user.ID, ExpertiseAreaID: area.ID, FameLevelID: level.ID}
	require.NoError(t, database.C.Create(&fame).Error)
	services.FlushSimilarityCache()
	return fame
}

func createPost(t *testing.T, author models.User, content string, published bool, at time.Time, areas ...models.ExpertiseArea) models.Post {
	t.Helper()

	post := models.Post{
		Content:   content,
		Published: published,
		AuthorID:  author.ID,
	}
	post.CreatedAt = at
	require.NoError(t, database.C.Create(&post).Error)

	for _, area := range areas {
		classification := models.PostClassification{PostID: post.ID, ExpertiseAreaID: area.ID}
		require.NoError(t, database.C.Create(&classification).Error)
	}
	return post
}

func mustJoin(t *testing.T, user models.User, area models.ExpertiseArea) {
	t.Helper()

	joined, err := services.JoinCommunity(user, area)
	require.NoError(t, err)
	require.True(t, joined)
}

func postIdx(posts []models.Post) []uint {
	idx := make([]uint, len(posts))
	for i, post := range posts {
		idx[i] = post.ID
	}
	return idx
}
