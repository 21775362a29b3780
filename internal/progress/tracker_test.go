package progress

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/dailycards/internal/domain"
)

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (s *failingStore) Load(ctx context.Context) (*domain.ProgressDatabase, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return domain.NewProgressDatabase(), nil
}

func (s *failingStore) Save(ctx context.Context, db *domain.ProgressDatabase) error {
	s.saves++
	return s.saveErr
}

func TestTracker(t *testing.T) {
	ctx := context.Background()

	t.Run("mark persists", func(t *testing.T) {
		store := NewMemoryStore(nil)
		tracker := NewTracker(store)
		require.NoError(t, tracker.Mark(ctx, "p1", day, "c1", domain.Learned))

		profile, err := tracker.Profile(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, profile.LearnedByDate[day])
	})

	t.Run("profile does not persist unknown profiles", func(t *testing.T) {
		store := NewMemoryStore(nil)
		tracker := NewTracker(store)
		profile, err := tracker.Profile(ctx, "ghost")
		require.NoError(t, err)
		assert.Empty(t, profile.LearnedByDate)

		db, err := store.Load(ctx)
		require.NoError(t, err)
		assert.NotContains(t, db.Profiles, "ghost")
	})

	t.Run("reset only touches one profile", func(t *testing.T) {
		tracker := NewTracker(NewMemoryStore(nil))
		require.NoError(t, tracker.Mark(ctx, "A", day, "c1", domain.Learned))
		require.NoError(t, tracker.Mark(ctx, "B", day, "c1", domain.Learned))
		require.NoError(t, tracker.Reset(ctx, "A"))

		a, err := tracker.Profile(ctx, "A")
		require.NoError(t, err)
		assert.Empty(t, a.LearnedByDate)
		b, err := tracker.Profile(ctx, "B")
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, b.LearnedByDate[day])
	})

	t.Run("unknown status never saves", func(t *testing.T) {
		store := &failingStore{}
		err := NewTracker(store).Mark(ctx, "p1", day, "c1", "bogus")
		assert.ErrorIs(t, err, ErrUnknownStatus)
		assert.Zero(t, store.saves)
	})

	t.Run("load errors propagate", func(t *testing.T) {
		boom := errors.New("disk gone")
		store := &failingStore{loadErr: boom}
		err := NewTracker(store).Mark(ctx, "p1", day, "c1", domain.Learned)
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, store.saves)
	})

	t.Run("save errors propagate", func(t *testing.T) {
		boom := errors.New("read-only")
		err := NewTracker(&failingStore{saveErr: boom}).Reset(ctx, "p1")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("concurrent marks are not lost", func(t *testing.T) {
		tracker := NewTracker(NewMemoryStore(nil))
		ids := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				assert.NoError(t, tracker.Mark(ctx, "p1", day, id, domain.Learned))
			}(id)
		}
		wg.Wait()

		profile, err := tracker.Profile(ctx, "p1")
		require.NoError(t, err)
		assert.ElementsMatch(t, ids, profile.LearnedByDate[day])
	})
}
