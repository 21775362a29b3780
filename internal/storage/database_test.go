package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/dailycards/internal/domain"
	"github.com/conorfennell/dailycards/internal/progress"
)

func openTestDB(t *testing.T, dsn string) *DB {
	t.Helper()
	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadEmpty(t *testing.T) {
	db := openTestDB(t, ":memory:")
	pd, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pd.Profiles)
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, ":memory:")

	pd := domain.NewProgressDatabase()
	require.NoError(t, progress.MarkCard(pd, "p1", "2024-01-01", "c3", domain.Learned))
	require.NoError(t, progress.MarkCard(pd, "p1", "2024-01-01", "c1", domain.Learned))
	require.NoError(t, progress.MarkCard(pd, "p1", "2024-01-02", "c2", domain.Difficult))
	pd.Profiles["empty"] = domain.NewProfile()

	require.NoError(t, db.Save(ctx, pd))

	loaded, err := db.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, loaded.Profiles, "empty")
	assert.Empty(t, loaded.Profiles["empty"].LearnedByDate)

	p1 := loaded.Profiles["p1"]
	assert.Equal(t, []string{"c3", "c1"}, p1.LearnedByDate["2024-01-01"])
	assert.Equal(t, []string{"c2"}, p1.DifficultByDate["2024-01-02"])

	emptyDay, ok := p1.LearnedByDate["2024-01-02"]
	assert.True(t, ok, "empty per-date sets must survive a round trip")
	assert.Empty(t, emptyDay)
	assert.Empty(t, p1.DifficultByDate["2024-01-01"])
}

func TestSaveReplacesEverything(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, ":memory:")

	first := domain.NewProgressDatabase()
	require.NoError(t, progress.MarkCard(first, "A", "2024-01-01", "c1", domain.Learned))
	require.NoError(t, db.Save(ctx, first))

	second := domain.NewProgressDatabase()
	require.NoError(t, progress.MarkCard(second, "B", "2024-01-01", "c2", domain.Learned))
	require.NoError(t, db.Save(ctx, second))

	loaded, err := db.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, loaded.Profiles, "A")
	assert.Equal(t, []string{"c2"}, loaded.Profiles["B"].LearnedByDate["2024-01-01"])
}

func TestTrackerOverSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	tracker := progress.NewTracker(db)
	require.NoError(t, tracker.Mark(ctx, "p1", "2024-01-01", "c1", domain.Difficult))
	require.NoError(t, tracker.Mark(ctx, "p1", "2024-01-01", "c1", domain.Learned))
	require.NoError(t, db.Close())

	reopened := openTestDB(t, path)
	profile, err := progress.NewTracker(reopened).Profile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, profile.LearnedByDate["2024-01-01"])
	assert.Empty(t, profile.DifficultByDate["2024-01-01"])
}
