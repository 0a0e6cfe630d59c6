package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritas-social/ranker/pkg/internal/models"
	"github.com/veritas-social/ranker/pkg/internal/services"
)

func TestSimilarUsersExactMatch(t *testing.T) {
	setupDatabase(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := createUser(t, "alice@example.com", base)
	bob := createUser(t, "bob@example.com", base)
	math := createArea(t, "math")

	setFame(t, alice, math, "Pro")
	setFame(t, bob, math, "Pro")

	similar, err := services.SimilarUsers(alice)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, bob.ID, similar[0].User.ID)
	assert.Equal(t, 1.0, similar[0].Similarity)
}

func TestSimilarUsersAbsentRecordIsDissimilar(t *testing.T) {
	setupDatabase(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := createUser(t, "alice@example.com", base)
	createUser(t, "bob@example.com", base)
	math := createArea(t, "math")

	setFame(t, alice, math, "Pro")

	similar, err := services.SimilarUsers(alice)
	require.NoError(t, err)
	assert.Empty(t, similar)
}

func TestSimilarUsersWindow(t *testing.T) {
	setupDatabase(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := createUser(t, "alice@example.com", base)
	near := createUser(t, "near@example.com", base)
	far := createUser(t, "far@example.com", base)
	math := createArea(t, "math")

	setFame(t, alice, math, models.FameLevelSuperPro) // 100
	setFame(t, near, math, "Apprentice")              // 10, within 100
	setFame(t, far, math, "Bullshitter")              // -100, distance 200

	similar, err := services.SimilarUsers(alice)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, near.ID, similar[0].User.ID)
}

func TestSimilarUsersOrdering(t *testing.T) {
	setupDatabase(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := createUser(t, "alice@example.com", base)
	full := createUser(t, "full@example.com", base.Add(1*time.Hour))
	halfEarly := createUser(t, "half-early@example.com", base.Add(2*time.Hour))
	halfLate := createUser(t, "half-late@example.com", base.Add(3*time.Hour))

	math := createArea(t, "math")
	physics := createArea(t, "physics")

	setFame(t, alice, math, "Pro")
	setFame(t, alice, physics, "Pro")

	setFame(t, full, math, "Pro")
	setFame(t, full, physics, "Apprentice")

	setFame(t, halfEarly, math, "Pro")
	setFame(t, halfLate, math, "Pro")

	similar, err := services.SimilarUsers(alice)
	require.NoError(t, err)
	require.Len(t, similar, 3)

	assert.Equal(t, full.ID, similar[0].User.ID)
	assert.Equal(t, 1.0, similar[0].Similarity)

	// Equal scores fall back to the most recently joined user first.
	assert.Equal(t, halfLate.ID, similar[1].User.ID)
	assert.Equal(t, halfEarly.ID, similar[2].User.ID)
	assert.Equal(t, 0.5, similar[1].Similarity)
	assert.Equal(t, 0.5, similar[2].Similarity)
}

func TestSimilarUsersWithoutFameIsEmpty(t *testing.T) {
	setupDatabase(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := createUser(t, "alice@example.com", base)
	bob := createUser(t, "bob@example.com", base)
	math := createArea(t, "math")
	setFame(t, bob, math, "Pro")

	similar, err := services.SimilarUsers(alice)
	require.NoError(t, err)
	assert.Empty(t, similar)
}

func TestSimilarUsersReflectsLedgerChanges(t *testing.T) {
	setupDatabase(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := createUser(t, "alice@example.com", base)
	bob := createUser(t, "bob@example.com", base)
	math := createArea(t, "math")

	setFame(t, alice, math, models.FameLevelSuperPro)

	similar, err := services.SimilarUsers(alice)
	require.NoError(t, err)
	assert.Empty(t, similar)

	// A new ledger entry invalidates the cached ranking.
	setFame(t, bob, math, "Pro")

	similar, err = services.SimilarUsers(alice)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, bob.ID, similar[0].User.ID)
}
