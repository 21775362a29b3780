// Package stats derives learning statistics from a profile's progress.
package stats

import (
	"math"
	"time"

	"github.com/conorfennell/dailycards/internal/domain"
)

// Compute summarizes profile for the calendar day today.
//
// CompletionRate divides the all-time learned count by the number of
// learnedByDate keys times the catalog size. A card learned again on a later
// day counts twice, so the rate can exceed 100.
func Compute(profile *domain.Profile, catalogSize int, today time.Time) domain.Stats {
	if profile == nil {
		profile = domain.NewProfile()
	}
	todayKey := domain.DateKey(today)

	totalLearned := 0
	for _, ids := range profile.LearnedByDate {
		totalLearned += len(ids)
	}

	possible := len(profile.LearnedByDate) * catalogSize
	completionRate := 0
	if possible > 0 {
		completionRate = int(math.Round(float64(totalLearned) / float64(possible) * 100))
	}

	return domain.Stats{
		TotalLearned:   totalLearned,
		CompletionRate: completionRate,
		Streak:         Streak(profile.LearnedByDate, today),
		DifficultToday: len(profile.DifficultByDate[todayKey]),
		LearnedToday:   len(profile.LearnedByDate[todayKey]),
		TotalCards:     catalogSize,
	}
}

// Streak counts consecutive days ending today with at least one learned card.
// An empty today yields 0.
func Streak(learnedByDate map[string][]string, today time.Time) int {
	streak := 0
	cursor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	for len(learnedByDate[domain.DateKey(cursor)]) > 0 {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
