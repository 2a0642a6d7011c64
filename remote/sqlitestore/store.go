// Package sqlitestore keeps game documents in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	_ "modernc.org/sqlite"

	"github.com/domino14/tashbetz/game"
	"github.com/domino14/tashbetz/remote"
)

// Store is a remote.DocumentStore backed by SQLite. Each game is one row;
// the document is kept as JSON next to its revision.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the database and runs migrations. The path may
// be ":memory:".
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: writes are serialized anyway, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			doc        TEXT NOT NULL,
			revision   INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func encode(st *game.State) (string, error) {
	doc, err := st.ToDocument()
	if err != nil {
		return "", err
	}
	bts, err := protojson.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

func decode(raw string) (*game.State, error) {
	doc := &structpb.Struct{}
	if err := protojson.Unmarshal([]byte(raw), doc); err != nil {
		return nil, fmt.Errorf("%w: %w", game.ErrBadDocument, err)
	}
	return game.StateFromDocument(doc)
}

func currentRevision(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	var rev int64
	err := tx.QueryRowContext(ctx, "SELECT revision FROM games WHERE id = ?", id).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, remote.ErrNotFound
	}
	return rev, err
}

// Create inserts a new game at revision 1.
func (s *Store) Create(ctx context.Context, st *game.State) (*game.State, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = currentRevision(ctx, tx, st.ID)
	switch {
	case err == nil:
		return nil, remote.ErrExists
	case !errors.Is(err, remote.ErrNotFound):
		return nil, err
	}
	stored := st.Clone()
	stored.Revision = 1
	stored.UpdatedAt = s.now().UTC()
	doc, err := encode(stored)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO games (id, doc, revision, updated_at) VALUES (?, ?, ?, ?)",
		stored.ID, doc, stored.Revision, stored.UpdatedAt.UnixMilli())
	if err != nil {
		return nil, err
	}
	return stored, tx.Commit()
}

// Get retrieves a game by ID.
func (s *Store) Get(ctx context.Context, id string) (*game.State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM games WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, remote.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

// MergeWrite replaces the stored document with st, which must be based on
// the latest revision.
func (s *Store) MergeWrite(ctx context.Context, st *game.State) (*game.State, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rev, err := currentRevision(ctx, tx, st.ID)
	if err != nil {
		return nil, err
	}
	if rev != st.Revision {
		return nil, remote.ErrConflict
	}
	stored := st.Clone()
	stored.Revision = rev + 1
	stored.UpdatedAt = s.now().UTC()
	doc, err := encode(stored)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE games SET doc = ?, revision = ?, updated_at = ? WHERE id = ?",
		doc, stored.Revision, stored.UpdatedAt.UnixMilli(), stored.ID)
	if err != nil {
		return nil, err
	}
	return stored, tx.Commit()
}

// GameSummary is one row of List.
type GameSummary struct {
	ID        string
	Revision  int64
	UpdatedAt time.Time
}

// List returns every stored game, most recently updated first.
func (s *Store) List(ctx context.Context) ([]GameSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, revision, updated_at FROM games ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []GameSummary
	for rows.Next() {
		var gs GameSummary
		var ms int64
		if err := rows.Scan(&gs.ID, &gs.Revision, &ms); err != nil {
			return nil, err
		}
		gs.UpdatedAt = time.UnixMilli(ms).UTC()
		result = append(result, gs)
	}
	return result, rows.Err()
}
