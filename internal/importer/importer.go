// Package importer builds a catalog file from card files and spreadsheets.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/conorfennell/dailycards/internal/catalog"
	"github.com/conorfennell/dailycards/internal/domain"
	"github.com/conorfennell/dailycards/internal/knol"
	"github.com/conorfennell/dailycards/internal/parser"
)

// ErrDuplicateID is returned when two imported cards share an id.
var ErrDuplicateID = errors.New("duplicate card id")

const (
	idColumn       = "id"
	categoryColumn = "category"
	exampleSuffix  = " example"
)

// Report summarizes an import run.
type Report struct {
	Files        int
	Cards        int
	GeneratedIDs int
	Errors       []error
}

// ImportDir walks dir and collects cards from every supported file.
// Per-file read errors are recorded in the report and the walk continues;
// duplicate ids and invalid cards fail the whole import.
func ImportDir(dir string) ([]domain.Card, *Report, error) {
	report := &Report{}
	var cards []domain.Card

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		fileCards, readErr := ReadFile(path)
		if readErr != nil {
			report.Errors = append(report.Errors, fmt.Errorf("error reading %s: %w", path, readErr))
			return nil
		}
		report.Files++
		cards = append(cards, fileCards...)
		slog.Debug("cards read", "path", path, "count", len(fileCards))
		return nil
	})
	if err != nil {
		return nil, report, fmt.Errorf("walk %s: %w", dir, err)
	}

	seen := make(map[string]bool, len(cards))
	for i := range cards {
		if cards[i].ID == "" {
			cards[i].ID = knol.CardID(cards[i])
			report.GeneratedIDs++
		}
		if seen[cards[i].ID] {
			return nil, report, fmt.Errorf("%w: %s", ErrDuplicateID, cards[i].ID)
		}
		seen[cards[i].ID] = true
	}
	if err := catalog.Validate(cards); err != nil {
		return nil, report, err
	}

	report.Cards = len(cards)
	return cards, report, nil
}

// Supported reports whether path has an importable extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt", ".csv", ".xlsx":
		return true
	}
	return false
}

// ReadFile reads cards from a single card file, CSV or XLSX workbook.
func ReadFile(path string) ([]domain.Card, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return parser.ParseFile(path)
	}
}

func readCSV(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return FromRows(rows)
}

func readXLSX(path string) ([]domain.Card, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	var cards []domain.Card
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		sheetCards, err := FromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		cards = append(cards, sheetCards...)
	}
	return cards, nil
}

// FromRows converts a header row plus data rows into cards. Recognized
// headers are "id", "category", "<Language>" and "<Language> example".
func FromRows(rows [][]string) ([]domain.Card, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	hasCategory := false
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		if strings.EqualFold(header[i], categoryColumn) {
			hasCategory = true
		}
	}
	if !hasCategory {
		return nil, fmt.Errorf("header has no %q column", categoryColumn)
	}

	var cards []domain.Card
	for _, row := range rows[1:] {
		card := domain.Card{Translations: map[string]string{}, Examples: map[string]string{}}
		empty := true
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			empty = false
			name := header[i]
			if lang, ok := exampleLanguage(name); ok {
				card.Examples[lang] = value
				continue
			}
			switch {
			case strings.EqualFold(name, idColumn):
				card.ID = value
			case strings.EqualFold(name, categoryColumn):
				card.Category = domain.Category(strings.ToLower(value))
			default:
				card.Translations[name] = value
			}
		}
		if !empty {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// exampleLanguage strips a case-insensitive " example" suffix from a header.
func exampleLanguage(header string) (string, bool) {
	n := len(header) - len(exampleSuffix)
	if n <= 0 || !strings.EqualFold(header[n:], exampleSuffix) {
		return "", false
	}
	return strings.TrimSpace(header[:n]), true
}

// WriteCatalog writes cards as an indented JSON catalog at path.
func WriteCatalog(path string, cards []domain.Card) error {
	if cards == nil {
		cards = []domain.Card{}
	}
	data, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}
