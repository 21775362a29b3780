// Package deck builds the ordered, filtered and localized daily deck.
package deck

import (
	"github.com/conorfennell/dailycards/internal/domain"
	"github.com/conorfennell/dailycards/internal/shuffle"
)

// Request selects one profile's deck for one day.
type Request struct {
	ProfileID  string
	Date       string
	Native     string
	Target     string
	Category   string
	UndoneOnly bool
}

// Result is the deck plus the global counts for the day.
// TotalAllCards and LearnedToday ignore the category and undone filters.
type Result struct {
	Cards         []domain.HydratedCard `json:"cards"`
	TotalAllCards int                   `json:"totalAllCards"`
	LearnedToday  int                   `json:"learnedToday"`
	Date          string                `json:"date"`
}

// Selector localizes cards. A target text missing in the requested language
// falls back to TargetFallback; native text and examples fall back to
// NativeFallback.
type Selector struct {
	TargetFallback string
	NativeFallback string
}

// SeedKey is the shuffle seed for a profile's deck on date.
func SeedKey(profileID, date string) string {
	return profileID + "-" + date
}

// Select orders catalog for req, then filters and localizes it.
func (s Selector) Select(catalog []domain.Card, profile *domain.Profile, req Request) Result {
	if profile == nil {
		profile = domain.NewProfile()
	}
	learned := profile.LearnedOn(req.Date)

	ordered := shuffle.Shuffle(catalog, SeedKey(req.ProfileID, req.Date))
	cards := make([]domain.HydratedCard, 0, len(ordered))
	for _, card := range ordered {
		if req.Category != domain.AllCategories && string(card.Category) != req.Category {
			continue
		}
		if req.UndoneOnly {
			if _, done := learned[card.ID]; done {
				continue
			}
		}
		cards = append(cards, s.hydrate(card, req.Native, req.Target))
	}

	return Result{
		Cards:         cards,
		TotalAllCards: len(catalog),
		LearnedToday:  len(learned),
		Date:          req.Date,
	}
}

func (s Selector) hydrate(card domain.Card, native, target string) domain.HydratedCard {
	return domain.HydratedCard{
		ID:       card.ID,
		Category: card.Category,
		Target:   localize(card.Translations, target, s.TargetFallback),
		Native:   localize(card.Translations, native, s.NativeFallback),
		Example:  localize(card.Examples, native, s.NativeFallback),
	}
}

// localize returns values[lang], then values[fallback], then "".
func localize(values map[string]string, lang, fallback string) string {
	if v, ok := values[lang]; ok && v != "" {
		return v
	}
	return values[fallback]
}
