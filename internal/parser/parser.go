package parser

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/conorfennell/dailycards/internal/domain"
)

const (
	separator     = "---"
	idKey         = "id"
	categoryKey   = "category"
	exampleSuffix = " example"
)

// keyLine matches "Key: value" and "Key example: value".
var keyLine = regexp.MustCompile(`^([A-Za-z]+(?: [Ee]xample)?):[ \t]?(.*)$`)

type fieldKind int

const (
	seeking fieldKind = iota
	readingID
	readingCategory
	readingTranslation
	readingExample
)

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads card blocks from r.
//
//	ID: v001
//	Category: vocabulary
//	English: Hello
//	English example: Hello there!
//	---
//
// Lines that are not "Key:" lines continue the previous field. A second
// Category line starts a new card even without a separator.
func Parse(r io.Reader) ([]domain.Card, error) {
	scanner := bufio.NewScanner(r)
	var cards []domain.Card
	var currentCard domain.Card
	var currentBlock []string
	var currentLang string
	currentState := seeking

	flushField := func() {
		if len(currentBlock) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(currentBlock, "\n"))
		switch currentState {
		case readingID:
			currentCard.ID = content
		case readingCategory:
			currentCard.Category = domain.Category(strings.ToLower(content))
		case readingTranslation:
			if currentCard.Translations == nil {
				currentCard.Translations = map[string]string{}
			}
			currentCard.Translations[currentLang] = content
		case readingExample:
			if currentCard.Examples == nil {
				currentCard.Examples = map[string]string{}
			}
			currentCard.Examples[currentLang] = content
		}
		currentBlock = nil
	}

	finishCard := func() {
		flushField()
		if len(currentCard.Translations) > 0 {
			cards = append(cards, currentCard)
		}
		currentCard = domain.Card{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			finishCard()
			continue
		}

		match := keyLine.FindStringSubmatch(line)
		if match == nil {
			if currentState != seeking {
				currentBlock = append(currentBlock, line)
			}
			continue
		}

		flushField()
		key, value := match[1], match[2]
		switch lower := strings.ToLower(key); {
		case lower == idKey:
			if currentCard.ID != "" {
				finishCard()
			}
			currentState = readingID
		case lower == categoryKey:
			if currentCard.Category != "" {
				finishCard()
			}
			currentState = readingCategory
		case strings.HasSuffix(lower, exampleSuffix):
			currentState = readingExample
			currentLang = key[:len(key)-len(exampleSuffix)]
		default:
			currentState = readingTranslation
			currentLang = key
		}
		currentBlock = append(currentBlock, value)
	}

	finishCard() // Finish the very last card in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}
