package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"deckview-cli/internal/model"

	_ "modernc.org/sqlite"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.manifestPath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids "database is
	// locked" flakiness when the host and an export run overlap.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS slide_order (
			slide_id TEXT PRIMARY KEY,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS groups (
			slide_number INTEGER NOT NULL,
			group_id TEXT NOT NULL,
			ord INTEGER NOT NULL,
			color_index INTEGER NOT NULL,
			elements_json TEXT NOT NULL,
			PRIMARY KEY(slide_number, group_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_groups_slide ON groups(slide_number, ord);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func loadMeta(ctx context.Context, db *sql.DB, key string) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SaveMeta stores a small metadata value (e.g. deck title).
func (s Store) SaveMeta(ctx context.Context, key, value string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, key, value)
	return err
}

func loadSlideOrder(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT slide_id FROM slide_order ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var order []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		order = append(order, id)
	}
	return order, rows.Err()
}

// SaveOrder persists a full slide ordering (replace-all: simple and safe for
// the small sets a deck holds).
func (s Store) SaveOrder(ctx context.Context, slideIDs []string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM slide_order`); err != nil {
		return err
	}
	for i, id := range slideIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO slide_order(slide_id, position) VALUES(?, ?)`, id, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func loadGroups(ctx context.Context, db *sql.DB) (map[int][]model.GroupRecord, error) {
	rows, err := db.QueryContext(ctx, `SELECT slide_number, group_id, ord, color_index, elements_json FROM groups ORDER BY slide_number, ord`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int][]model.GroupRecord{}
	for rows.Next() {
		var (
			slideNumber  int
			rec          model.GroupRecord
			elementsJSON string
		)
		if err := rows.Scan(&slideNumber, &rec.ID, &rec.Order, &rec.ColorIndex, &elementsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(elementsJSON), &rec.ElementIDs); err != nil {
			// A corrupt row loses its membership, not the whole deck.
			rec.ElementIDs = nil
		}
		out[slideNumber] = append(out[slideNumber], rec)
	}
	return out, rows.Err()
}

// SaveGroups replaces the group records for one slide.
func (s Store) SaveGroups(ctx context.Context, slideNumber int, recs []model.GroupRecord) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE slide_number = ?`, slideNumber); err != nil {
		return err
	}
	for _, rec := range recs {
		elements, err := json.Marshal(rec.ElementIDs)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO groups(slide_number, group_id, ord, color_index, elements_json) VALUES(?, ?, ?, ?, ?)`,
			slideNumber, rec.ID, rec.Order, rec.ColorIndex, string(elements)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
