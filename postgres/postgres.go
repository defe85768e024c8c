// Package postgres stores card catalogs and shared decks in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gcgcode "github.com/dvaJi/genshin-builds-sub003"
)

// Config holds the share code layout the stored codes were produced with.
type Config struct {
	CharacterCards int
	ActionCards    int
	CodeBytes      int
}

// DefaultConfig returns the layout implemented by the gcgcode package.
func DefaultConfig() Config {
	return Config{
		CharacterCards: gcgcode.CharacterCardCount,
		ActionCards:    gcgcode.ActionCardCount,
		CodeBytes:      gcgcode.CodeByteLen,
	}
}

// MaskOffset is the byte index of the mask in a decoded share code.
func (c Config) MaskOffset() int { return c.CodeBytes - 1 }

var (
	ErrConfigMismatch = errors.New("gcgcode: database config does not match application config")
	ErrDeckNotFound   = errors.New("gcgcode: shared deck not found")
)

// Migrate runs the idempotent schema migration with the given configuration.
// If the database already has a different configuration, returns ErrConfigMismatch.
func Migrate(ctx context.Context, db *sql.DB, cfg Config) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _gcgcode_config (
			id int PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			character_cards int NOT NULL,
			action_cards int NOT NULL,
			code_bytes int NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("gcgcode: create config table: %w", err)
	}

	existing, err := GetConfig(ctx, db)
	switch {
	case err == nil:
		if existing != cfg {
			return fmt.Errorf("%w: db has %+v, app has %+v", ErrConfigMismatch, existing, cfg)
		}
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.ExecContext(ctx, `INSERT INTO _gcgcode_config (character_cards, action_cards, code_bytes) VALUES ($1, $2, $3)`,
			cfg.CharacterCards, cfg.ActionCards, cfg.CodeBytes)
		if err != nil {
			return fmt.Errorf("gcgcode: insert config: %w", err)
		}
	default:
		return fmt.Errorf("gcgcode: read config: %w", err)
	}

	if _, err := db.ExecContext(ctx, generateSQL(cfg)); err != nil {
		return fmt.Errorf("gcgcode: run migrations: %w", err)
	}
	return nil
}

// GetConfig reads the layout configuration from the database.
func GetConfig(ctx context.Context, db *sql.DB) (Config, error) {
	var cfg Config
	err := db.QueryRowContext(ctx, `SELECT character_cards, action_cards, code_bytes FROM _gcgcode_config`).
		Scan(&cfg.CharacterCards, &cfg.ActionCards, &cfg.CodeBytes)
	return cfg, err
}

// SaveCatalog replaces the stored card table with catalog.
func SaveCatalog(ctx context.Context, db *sql.DB, catalog *gcgcode.Catalog) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("gcgcode: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM gcg_cards`); err != nil {
		return fmt.Errorf("gcgcode: clear cards: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO gcg_cards (encoding_id, card_id) VALUES ($1, $2)`)
	if err != nil {
		return fmt.Errorf("gcgcode: prepare insert: %w", err)
	}
	defer stmt.Close()
	for id, card := range catalog.Cards() {
		if _, err := stmt.ExecContext(ctx, id, card); err != nil {
			return fmt.Errorf("gcgcode: insert card %q: %w", card, err)
		}
	}
	return tx.Commit()
}

// LoadCatalog rebuilds a catalog from the stored card table.
func LoadCatalog(ctx context.Context, db *sql.DB) (*gcgcode.Catalog, error) {
	rows, err := db.QueryContext(ctx, `SELECT encoding_id, card_id FROM gcg_cards`)
	if err != nil {
		return nil, fmt.Errorf("gcgcode: query cards: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int)
	for rows.Next() {
		var id int
		var card string
		if err := rows.Scan(&id, &card); err != nil {
			return nil, fmt.Errorf("gcgcode: scan card: %w", err)
		}
		ids[card] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gcgcode: read cards: %w", err)
	}
	return gcgcode.NewCatalogFromMap(ids)
}

// SaveDeck encodes deck and stores it under its share code.
// Saving the same deck twice is a no-op returning the same code.
func SaveDeck(ctx context.Context, db *sql.DB, codec *gcgcode.Codec, catalog *gcgcode.Catalog, deck gcgcode.Deck) (string, error) {
	code, err := codec.Encode(deck, catalog)
	if err != nil {
		return "", err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO gcg_shared_decks (code, deck) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
		code, deck)
	if err != nil {
		return "", fmt.Errorf("gcgcode: insert deck: %w", err)
	}
	return code, nil
}

// LoadDeck returns the stored deck for code, or ErrDeckNotFound.
func LoadDeck(ctx context.Context, db *sql.DB, code string) (gcgcode.Deck, error) {
	var deck gcgcode.Deck
	err := db.QueryRowContext(ctx, `SELECT deck FROM gcg_shared_decks WHERE code = $1`, code).Scan(&deck)
	if errors.Is(err, sql.ErrNoRows) {
		return deck, fmt.Errorf("%w: %q", ErrDeckNotFound, code)
	}
	if err != nil {
		return deck, fmt.Errorf("gcgcode: load deck: %w", err)
	}
	return deck, nil
}

// Store binds a database to the codec and catalog used to save decks.
type Store struct {
	DB      *sql.DB
	Codec   *gcgcode.Codec
	Catalog *gcgcode.Catalog
}

// SaveDeck encodes and stores deck. See the package-level SaveDeck.
func (s *Store) SaveDeck(ctx context.Context, deck gcgcode.Deck) (string, error) {
	return SaveDeck(ctx, s.DB, s.Codec, s.Catalog, deck)
}

// LoadDeck returns the deck stored under code.
func (s *Store) LoadDeck(ctx context.Context, code string) (gcgcode.Deck, error) {
	return LoadDeck(ctx, s.DB, code)
}

func generateSQL(cfg Config) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS gcg_cards (
  encoding_id int PRIMARY KEY CHECK (encoding_id BETWEEN 0 AND %d),
  card_id text NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS gcg_shared_decks (
  code text PRIMARY KEY,
  deck jsonb NOT NULL,
  created_at timestamptz NOT NULL DEFAULT now()
);

-- True when a share code has the decodable length
CREATE OR REPLACE FUNCTION gcg_code_valid(code text)
  RETURNS boolean
  LANGUAGE plpgsql
  IMMUTABLE PARALLEL SAFE STRICT
  AS $$
BEGIN
  RETURN octet_length(decode(code, 'base64')) = %d;
EXCEPTION WHEN others THEN
  RETURN false;
END;
$$;

-- Mask byte of a share code
CREATE OR REPLACE FUNCTION gcg_code_mask(code text)
  RETURNS int
  LANGUAGE sql
  IMMUTABLE PARALLEL SAFE STRICT
  AS $$
  SELECT get_byte(decode(code, 'base64'), %d);
$$;
`,
		gcgcode.MaxEncodingID, // encoding_id range
		cfg.CodeBytes,         // length in gcg_code_valid
		cfg.MaskOffset(),      // mask offset in gcg_code_mask
	)
}
