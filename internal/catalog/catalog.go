// Package catalog loads the immutable card catalog.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/conorfennell/dailycards/internal/domain"
)

// ErrStorage is returned when the catalog cannot be read, parsed or validated.
var ErrStorage = errors.New("catalog storage error")

var validate = validator.New()

// Loader returns the catalog in its canonical order.
type Loader interface {
	LoadCatalog(ctx context.Context) ([]domain.Card, error)
}

// FileLoader reads the catalog from a JSON or YAML file on every call.
type FileLoader struct {
	Path string
}

// NewFileLoader returns a loader for the catalog file at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// LoadCatalog implements Loader.
func (l *FileLoader) LoadCatalog(ctx context.Context) ([]domain.Card, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrStorage, l.Path, err)
	}
	cards, err := Decode(data, filepath.Ext(l.Path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStorage, l.Path, err)
	}
	return cards, nil
}

// Decode parses a catalog document and validates every card.
// ext selects the format: ".yaml"/".yml" for YAML, anything else is JSON.
func Decode(data []byte, ext string) ([]domain.Card, error) {
	var cards []domain.Card
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cards); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&cards); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	}
	if err := Validate(cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// Validate checks each card's fields and that ids are unique.
func Validate(cards []domain.Card) error {
	seen := make(map[string]int, len(cards))
	for i, card := range cards {
		if err := validate.Struct(card); err != nil {
			return fmt.Errorf("card %d (%q): %w", i, card.ID, err)
		}
		if prev, ok := seen[card.ID]; ok {
			return fmt.Errorf("card %d: id %q already used by card %d", i, card.ID, prev)
		}
		seen[card.ID] = i
	}
	return nil
}

// Static is a Loader over a fixed slice, used where the catalog is already in memory.
type Static []domain.Card

// LoadCatalog implements Loader.
func (s Static) LoadCatalog(ctx context.Context) ([]domain.Card, error) {
	return s, nil
}
