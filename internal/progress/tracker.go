package progress

import (
	"context"
	"log/slog"
	"sync"

	"github.com/conorfennell/dailycards/internal/domain"
)

// Tracker applies mutations as full load, mutate, save round-trips.
// Mutations are serialized so two requests in the same process never
// overwrite each other's changes.
type Tracker struct {
	mu    sync.Mutex
	store Store
}

// NewTracker returns a tracker persisting through store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Profile returns the progress of profileID. Unknown profiles come back
// empty and are not persisted.
func (t *Tracker) Profile(ctx context.Context, profileID string) (*domain.Profile, error) {
	db, err := t.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return EnsureProfile(db, profileID), nil
}

// Mark records status for cardID on date and persists the database.
func (t *Tracker) Mark(ctx context.Context, profileID, date, cardID string, status domain.Status) error {
	if err := checkStatus(status); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	db, err := t.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := MarkCard(db, profileID, date, cardID, status); err != nil {
		return err
	}
	if err := t.store.Save(ctx, db); err != nil {
		return err
	}
	slog.Debug("card marked", "profile_id", profileID, "date", date, "card_id", cardID, "status", status)
	return nil
}

// Reset clears all progress of profileID and persists the database.
func (t *Tracker) Reset(ctx context.Context, profileID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	db, err := t.store.Load(ctx)
	if err != nil {
		return err
	}
	ResetProfile(db, profileID)
	if err := t.store.Save(ctx, db); err != nil {
		return err
	}
	slog.Info("profile reset", "profile_id", profileID)
	return nil
}
