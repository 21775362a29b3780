// Package config loads server and importer settings from flags, the
// environment, an optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks environment variables read as configuration,
// e.g. DAILYCARDS_SERVER_ADDR sets server.addr.
const EnvPrefix = "DAILYCARDS_"

const (
	configFlag        = "config"
	defaultConfigFile = "dailycards.yaml"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Data    DataConfig    `koanf:"data"`
	Catalog CatalogConfig `koanf:"catalog"`
	Deck    DeckConfig    `koanf:"deck"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required,hostname_port"`
	// Static is an optional directory of client assets served outside /api.
	Static string `koanf:"static"`
}

// LogConfig configures slog. Unknown levels fall back to info.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

// DataConfig locates the catalog and the progress database.
type DataConfig struct {
	Catalog  string `koanf:"catalog" validate:"required"`
	Driver   string `koanf:"driver" validate:"oneof=json sqlite"`
	Progress string `koanf:"progress" validate:"required_if=Driver json"`
	SQLite   string `koanf:"sqlite" validate:"required_if=Driver sqlite"`
}

// CatalogConfig optionally fetches the catalog from a git repository.
type CatalogConfig struct {
	Repo     string `koanf:"repo"`
	Checkout string `koanf:"checkout" validate:"required_with=Repo"`
	File     string `koanf:"file" validate:"required_with=Repo"`
}

// DeckConfig holds the deck request defaults.
type DeckConfig struct {
	// TargetFallback replaces a missing target-language text.
	TargetFallback string   `koanf:"target-fallback" validate:"required"`
	// NativeFallback replaces a missing native-language text or example.
	NativeFallback string   `koanf:"native-fallback" validate:"required"`
	Native         string   `koanf:"native" validate:"required"`
	Target         string   `koanf:"target" validate:"required"`
	Profile        string   `koanf:"profile" validate:"required"`
	Languages      []string `koanf:"languages" validate:"min=1,dive,required"`
}

// RegisterFlags adds every configuration flag with its default to fs.
// A flag name maps to a key by turning its first "-" into "."; the rest of
// the name is the field, e.g. deck-native-fallback is deck.native-fallback.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(configFlag, defaultConfigFile, "Path to a YAML config file")
	fs.String("server-addr", "0.0.0.0:4173", "Address the HTTP server listens on")
	fs.String("server-static", "", "Directory of static client assets")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("log-format", "json", "Log format: json or text")
	fs.String("data-catalog", "data/cards.json", "Path to the card catalog (JSON or YAML)")
	fs.String("data-driver", "json", "Progress storage: json or sqlite")
	fs.String("data-progress", "data/progress.json", "Path to the JSON progress database")
	fs.String("data-sqlite", "data/progress.db", "SQLite DSN for the progress database")
	fs.String("catalog-repo", "", "Git URL to fetch the catalog from")
	fs.String("catalog-checkout", "repos/catalog", "Local checkout directory for catalog-repo")
	fs.String("catalog-file", "cards.json", "Catalog path inside the checkout")
	fs.String("deck-target-fallback", "English", "Language shown when a card lacks the requested target language")
	fs.String("deck-native-fallback", "Indonesia", "Language shown when a card lacks the requested native language or example")
	fs.String("deck-native", "Indonesia", "Default native language")
	fs.String("deck-target", "English", "Default target language")
	fs.String("deck-profile", "guest", "Profile used when a request names none")
	fs.StringSlice("deck-languages", []string{"Indonesia", "English", "Japanese", "Korean"}, "Languages offered to clients")
}

// Load merges, in increasing precedence: flag defaults, the YAML config
// file, .env and DAILYCARDS_ environment variables, then flags set on the
// command line. fs must have been populated by RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	path, err := fs.GetString(configFlag)
	if err != nil {
		return nil, fmt.Errorf("read config flag: %w", err)
	}
	if err := loadFile(k, path, fs.Changed(configFlag)); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	flags := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if f.Name == configFlag {
			return "", nil
		}
		return strings.Replace(f.Name, "-", ".", 1), posflag.FlagVal(fs, f)
	})
	if err := k.Load(flags, nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// loadFile reads the YAML file at path. A missing file is only an error
// when the path was given explicitly.
func loadFile(k *koanf.Koanf, path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}
	return nil
}

// envKey maps DAILYCARDS_DECK_NATIVE_FALLBACK to deck.native-fallback and
// DAILYCARDS_DECK_LANGUAGES=a,b to deck.languages=[a b].
func envKey(name, value string) (string, interface{}) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key = strings.ReplaceAll(strings.Replace(key, "_", ".", 1), "_", "-")
	if key == "deck.languages" {
		parts := strings.Split(value, ",")
		langs := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				langs = append(langs, p)
			}
		}
		return key, langs
	}
	return key, value
}
