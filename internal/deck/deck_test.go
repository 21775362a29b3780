package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/dailycards/internal/domain"
)

func card(id string, category domain.Category) domain.Card {
	return domain.Card{
		ID:       id,
		Category: category,
		Translations: map[string]string{
			"English":   id + " en",
			"Indonesia": id + " id",
		},
		Examples: map[string]string{
			"English":   id + " example en",
			"Indonesia": id + " example id",
		},
	}
}

func testCatalog() []domain.Card {
	return []domain.Card{
		card("v1", domain.Vocabulary),
		card("v2", domain.Vocabulary),
		card("g1", domain.Grammar),
		card("g2", domain.Grammar),
	}
}

func ids(cards []domain.HydratedCard) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestSelect(t *testing.T) {
	selector := Selector{TargetFallback: "English", NativeFallback: "Indonesia"}
	base := Request{ProfileID: "p1", Date: "2024-01-03", Native: "Indonesia", Target: "English", Category: domain.AllCategories}

	t.Run("orders the whole catalog by profile and date", func(t *testing.T) {
		got := selector.Select(testCatalog(), domain.NewProfile(), base)
		assert.Equal(t, []string{"v2", "g1", "v1", "g2"}, ids(got.Cards))
		assert.Equal(t, 4, got.TotalAllCards)
		assert.Equal(t, 0, got.LearnedToday)
		assert.Equal(t, "2024-01-03", got.Date)
	})

	t.Run("category and undone filters", func(t *testing.T) {
		profile := domain.NewProfile()
		profile.LearnedByDate["2024-01-03"] = []string{"g1"}

		req := base
		req.Category = string(domain.Grammar)
		req.UndoneOnly = true
		got := selector.Select(testCatalog(), profile, req)

		assert.Equal(t, []string{"g2"}, ids(got.Cards))
		assert.Equal(t, 4, got.TotalAllCards)
		assert.Equal(t, 1, got.LearnedToday)
	})

	t.Run("learned today counts cards outside the filter", func(t *testing.T) {
		profile := domain.NewProfile()
		profile.LearnedByDate["2024-01-03"] = []string{"v1", "v2"}

		req := base
		req.Category = string(domain.Grammar)
		req.UndoneOnly = true
		got := selector.Select(testCatalog(), profile, req)

		assert.Len(t, got.Cards, 2)
		assert.Equal(t, 2, got.LearnedToday)
	})

	t.Run("learned on another day is not undone-filtered", func(t *testing.T) {
		profile := domain.NewProfile()
		profile.LearnedByDate["2024-01-02"] = []string{"v1"}

		req := base
		req.UndoneOnly = true
		got := selector.Select(testCatalog(), profile, req)
		assert.Len(t, got.Cards, 4)
		assert.Equal(t, 0, got.LearnedToday)
	})

	t.Run("empty catalog", func(t *testing.T) {
		got := selector.Select(nil, nil, base)
		assert.NotNil(t, got.Cards)
		assert.Empty(t, got.Cards)
		assert.Equal(t, 0, got.TotalAllCards)
	})

	t.Run("does not reorder the catalog", func(t *testing.T) {
		catalog := testCatalog()
		selector.Select(catalog, nil, base)
		assert.Equal(t, "v1", catalog[0].ID)
	})
}

func TestLocalization(t *testing.T) {
	selector := Selector{TargetFallback: "English", NativeFallback: "Indonesia"}
	catalog := []domain.Card{{
		ID:       "c1",
		Category: domain.Sentences,
		Translations: map[string]string{
			"English":   "Hello",
			"Indonesia": "Halo",
			"Japanese":  "こんにちは",
		},
		Examples: map[string]string{
			"English":   "Hello there",
			"Indonesia": "Halo semua",
		},
	}}

	testCases := []struct {
		name        string
		native      string
		target      string
		wantTarget  string
		wantNative  string
		wantExample string
	}{
		{"both present", "English", "Japanese", "こんにちは", "Hello", "Hello there"},
		{"native falls back to the native fallback", "Korean", "English", "Hello", "Halo", "Halo semua"},
		{"target falls back to the target fallback", "Japanese", "Korean", "Hello", "こんにちは", "Halo semua"},
		{"native and target never share a fallback", "Korean", "Korean", "Hello", "Halo", "Halo semua"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := selector.Select(catalog, nil, Request{
				ProfileID: "p", Date: "2024-01-01", Native: tc.native, Target: tc.target, Category: domain.AllCategories,
			})
			require.Len(t, got.Cards, 1)
			assert.Equal(t, tc.wantTarget, got.Cards[0].Target)
			assert.Equal(t, tc.wantNative, got.Cards[0].Native)
			assert.Equal(t, tc.wantExample, got.Cards[0].Example)
		})
	}

	t.Run("missing fallback degrades to empty", func(t *testing.T) {
		broken := []domain.Card{{ID: "x", Category: domain.Grammar, Translations: map[string]string{"Korean": "안녕"}}}
		got := selector.Select(broken, nil, Request{
			ProfileID: "p", Date: "2024-01-01", Native: "Indonesia", Target: "Korean", Category: domain.AllCategories,
		})
		require.Len(t, got.Cards, 1)
		assert.Equal(t, "안녕", got.Cards[0].Target)
		assert.Equal(t, "", got.Cards[0].Native)
		assert.Equal(t, "", got.Cards[0].Example)
	})
}

func TestSeedKey(t *testing.T) {
	assert.Equal(t, "guest-2024-01-01", SeedKey("guest", "2024-01-01"))
}
