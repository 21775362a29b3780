package knol

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/conorfennell/dailycards/internal/domain"
)

// IDPrefix starts every derived card id.
const IDPrefix = "c_"

// Normalize renders the card's content in a canonical form: category first,
// then translations and examples sorted by language, each part lowercased,
// trimmed and with normalized line endings. The card's ID is ignored.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	parts := []string{normalizePart(string(card.Category))}
	appendSorted := func(kind string, values map[string]string) {
		langs := make([]string, 0, len(values))
		for lang := range values {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		for _, lang := range langs {
			parts = append(parts, kind+":"+normalizePart(lang)+"="+normalizePart(values[lang]))
		}
	}
	appendSorted("t", card.Translations)
	appendSorted("e", card.Examples)

	// Joined with newlines so neighbouring fields never run together.
	return strings.Join(parts, "\n")
}

// Hash returns the SHA-256 of the card's normalized content as a hex string.
func Hash(card domain.Card) string {
	hashBytes := sha256.Sum256([]byte(Normalize(card)))
	return fmt.Sprintf("%x", hashBytes)
}

// CardID derives a short stable id from the card's content.
func CardID(card domain.Card) string {
	return IDPrefix + Hash(card)[:12]
}
