package domain

import "time"

// DateLayout is the calendar date format used for progress keys.
const DateLayout = "2006-01-02"

// DateKey formats t as a progress date key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Status is the outcome a learner records for a card on a given day.
type Status string

const (
	Learned   Status = "learned"
	Difficult Status = "difficult"
)

// Profile holds one learner's daily progress.
// Each per-date slice is an insertion-ordered set of card ids.
type Profile struct {
	LearnedByDate   map[string][]string `json:"learnedByDate"`
	DifficultByDate map[string][]string `json:"difficultByDate"`
}

// NewProfile returns a profile with empty progress maps.
func NewProfile() *Profile {
	return &Profile{
		LearnedByDate:   map[string][]string{},
		DifficultByDate: map[string][]string{},
	}
}

// LearnedOn returns the set of card ids learned on date.
func (p *Profile) LearnedOn(date string) map[string]struct{} {
	set := make(map[string]struct{}, len(p.LearnedByDate[date]))
	for _, id := range p.LearnedByDate[date] {
		set[id] = struct{}{}
	}
	return set
}

// ProgressDatabase maps profile ids to their progress.
type ProgressDatabase struct {
	Profiles map[string]*Profile `json:"profiles"`
}

// NewProgressDatabase returns an empty database.
func NewProgressDatabase() *ProgressDatabase {
	return &ProgressDatabase{Profiles: map[string]*Profile{}}
}

// Stats summarizes a profile's progress.
type Stats struct {
	TotalLearned   int `json:"totalLearned"`
	CompletionRate int `json:"completionRate"`
	Streak         int `json:"streak"`
	DifficultToday int `json:"difficultToday"`
	LearnedToday   int `json:"learnedToday"`
	TotalCards     int `json:"totalCards"`
}
