package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/dailycards/internal/domain"
	"github.com/conorfennell/dailycards/internal/progress"
)

// DB is a SQLite-backed progress store. It satisfies progress.Store and,
// like the file store, loads and replaces the whole database at once.
type DB struct {
	conn *sqlx.DB
}

var _ progress.Store = (*DB)(nil)

// Open creates a new database connection and ensures the schema is up to date.
func Open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps ":memory:"
	// databases alive across calls.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := migrate(ctx, conn.DB); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

type dayRow struct {
	ProfileID string         `db:"profile_id"`
	Kind      string         `db:"kind"`
	Day       string         `db:"day"`
	CardID    sql.NullString `db:"card_id"`
}

// Load reads every profile with its per-date sets in insertion order.
func (db *DB) Load(ctx context.Context) (*domain.ProgressDatabase, error) {
	var profileIDs []string
	if err := db.conn.SelectContext(ctx, &profileIDs, `SELECT id FROM profiles`); err != nil {
		return nil, fmt.Errorf("%w: failed to load profiles: %w", progress.ErrStorage, err)
	}

	var rows []dayRow
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT d.profile_id, d.kind, d.day, m.card_id
		FROM progress_days d
		LEFT JOIN progress_marks m
			ON m.profile_id = d.profile_id AND m.kind = d.kind AND m.day = d.day
		ORDER BY d.profile_id, d.kind, d.day, m.position
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load progress: %w", progress.ErrStorage, err)
	}

	out := domain.NewProgressDatabase()
	for _, id := range profileIDs {
		out.Profiles[id] = domain.NewProfile()
	}
	for _, row := range rows {
		profile := progress.EnsureProfile(out, row.ProfileID)
		dates := profile.LearnedByDate
		if domain.Status(row.Kind) == domain.Difficult {
			dates = profile.DifficultByDate
		}
		if dates[row.Day] == nil {
			dates[row.Day] = []string{}
		}
		if row.CardID.Valid {
			dates[row.Day] = append(dates[row.Day], row.CardID.String)
		}
	}
	return out, nil
}

// Save replaces the stored progress with pd in a single transaction.
func (db *DB) Save(ctx context.Context, pd *domain.ProgressDatabase) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", progress.ErrStorage, err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM progress_marks`, `DELETE FROM progress_days`, `DELETE FROM profiles`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: failed to clear progress: %w", progress.ErrStorage, err)
		}
	}

	for profileID, profile := range pd.Profiles {
		if profile == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO profiles (id) VALUES (?)`, profileID); err != nil {
			return fmt.Errorf("%w: failed to insert profile %s: %w", progress.ErrStorage, profileID, err)
		}
		if err := insertDates(ctx, tx, profileID, domain.Learned, profile.LearnedByDate); err != nil {
			return err
		}
		if err := insertDates(ctx, tx, profileID, domain.Difficult, profile.DifficultByDate); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit progress: %w", progress.ErrStorage, err)
	}
	return nil
}

func insertDates(ctx context.Context, tx *sqlx.Tx, profileID string, kind domain.Status, dates map[string][]string) error {
	for day, ids := range dates {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO progress_days (profile_id, kind, day) VALUES (?, ?, ?)
		`, profileID, string(kind), day)
		if err != nil {
			return fmt.Errorf("%w: failed to insert %s day %s for %s: %w", progress.ErrStorage, kind, day, profileID, err)
		}
		for position, cardID := range ids {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO progress_marks (profile_id, kind, day, position, card_id)
				VALUES (?, ?, ?, ?, ?)
			`, profileID, string(kind), day, position, cardID)
			if err != nil {
				return fmt.Errorf("%w: failed to insert mark %s for %s: %w", progress.ErrStorage, cardID, profileID, err)
			}
		}
	}
	return nil
}
