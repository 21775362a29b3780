// Package progress persists per-profile daily learning progress and applies
// mark and reset operations to it.
package progress

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/conorfennell/dailycards/internal/domain"
)

var (
	// ErrStorage wraps failures to read or write the progress database.
	ErrStorage = errors.New("progress storage error")

	// ErrUnknownStatus is returned by MarkCard for statuses other than
	// learned and difficult. Nothing is mutated in that case.
	ErrUnknownStatus = errors.New("unknown progress status")
)

// Store reads and replaces the whole progress database.
type Store interface {
	Load(ctx context.Context) (*domain.ProgressDatabase, error)
	Save(ctx context.Context, db *domain.ProgressDatabase) error
}

// EnsureProfile returns the profile for profileID, inserting an empty one
// into db if it does not exist yet.
func EnsureProfile(db *domain.ProgressDatabase, profileID string) *domain.Profile {
	if db.Profiles == nil {
		db.Profiles = map[string]*domain.Profile{}
	}
	profile, ok := db.Profiles[profileID]
	if !ok || profile == nil {
		profile = domain.NewProfile()
		db.Profiles[profileID] = profile
	}
	if profile.LearnedByDate == nil {
		profile.LearnedByDate = map[string][]string{}
	}
	if profile.DifficultByDate == nil {
		profile.DifficultByDate = map[string][]string{}
	}
	return profile
}

// MarkCard records status for cardID on date.
//
// Both per-date sets are created if absent. Learned removes the card from the
// day's difficult set; difficult leaves the learned set alone. Marking a card
// that is already in the target set changes nothing.
func MarkCard(db *domain.ProgressDatabase, profileID, date, cardID string, status domain.Status) error {
	if err := checkStatus(status); err != nil {
		return err
	}

	profile := EnsureProfile(db, profileID)
	if profile.LearnedByDate[date] == nil {
		profile.LearnedByDate[date] = []string{}
	}
	if profile.DifficultByDate[date] == nil {
		profile.DifficultByDate[date] = []string{}
	}

	switch status {
	case domain.Learned:
		profile.LearnedByDate[date] = addID(profile.LearnedByDate[date], cardID)
		profile.DifficultByDate[date] = slices.DeleteFunc(profile.DifficultByDate[date], func(id string) bool {
			return id == cardID
		})
	case domain.Difficult:
		profile.DifficultByDate[date] = addID(profile.DifficultByDate[date], cardID)
	}
	return nil
}

// ResetProfile clears all progress of profileID. Other profiles are untouched.
func ResetProfile(db *domain.ProgressDatabase, profileID string) {
	if db.Profiles == nil {
		db.Profiles = map[string]*domain.Profile{}
	}
	db.Profiles[profileID] = domain.NewProfile()
}

func checkStatus(status domain.Status) error {
	if status != domain.Learned && status != domain.Difficult {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return nil
}

func addID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// Clone returns a deep copy of db.
func Clone(db *domain.ProgressDatabase) *domain.ProgressDatabase {
	out := domain.NewProgressDatabase()
	if db == nil {
		return out
	}
	for id, profile := range db.Profiles {
		if profile == nil {
			continue
		}
		out.Profiles[id] = &domain.Profile{
			LearnedByDate:   cloneDates(profile.LearnedByDate),
			DifficultByDate: cloneDates(profile.DifficultByDate),
		}
	}
	return out
}

func cloneDates(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for date, ids := range in {
		out[date] = append([]string{}, ids...)
	}
	return out
}
