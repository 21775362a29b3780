package domain

// Category groups cards by the kind of material they hold.
type Category string

const (
	Vocabulary   Category = "vocabulary"
	Sentences    Category = "sentences"
	Conversation Category = "conversation"
	Grammar      Category = "grammar"
)

// AllCategories is the filter value that disables category filtering.
const AllCategories = "all"

// CategoryInfo is a category together with its display label.
type CategoryInfo struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
}

// Categories lists the known categories in display order.
var Categories = []CategoryInfo{
	{ID: Vocabulary, Label: "📖 Kata"},
	{ID: Sentences, Label: "💬 Kalimat"},
	{ID: Conversation, Label: "🗣 Percakapan"},
	{ID: Grammar, Label: "🧠 Grammar dasar"},
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, info := range Categories {
		if info.ID == c {
			return true
		}
	}
	return false
}

// Card is a single entry of the immutable catalog.
// Translations and Examples are keyed by language name, e.g. "English".
type Card struct {
	ID           string            `json:"id" yaml:"id" validate:"required"`
	Category     Category          `json:"category" yaml:"category" validate:"required,oneof=vocabulary sentences conversation grammar"`
	Translations map[string]string `json:"translations" yaml:"translations"`
	Examples     map[string]string `json:"examples" yaml:"examples"`
}

// HydratedCard is a card localized for one native/target language pair.
type HydratedCard struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Target   string   `json:"target"`
	Native   string   `json:"native"`
	Example  string   `json:"example"`
}
