package stub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/iksnae/anybot/internal"
)

// ErrBotNotFound is returned when no bot has the requested id
var ErrBotNotFound = errors.New("bot not found")

const schema = `
CREATE TABLE IF NOT EXISTS bots (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS bot_documents (
	bot_id   TEXT NOT NULL,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	content  BLOB
);
CREATE TABLE IF NOT EXISTS bot_urls (
	bot_id   TEXT NOT NULL,
	position INTEGER NOT NULL,
	url      TEXT NOT NULL
);`

// StoredDocument is a document as the stub keeps it, content included
type StoredDocument struct {
	Name    string
	Content []byte
}

// BotStore persists bots in SQLite
type BotStore struct {
	db *sql.DB
}

// OpenBotStore opens dsn with the sqlite driver and creates the tables
func OpenBotStore(dsn string) (*BotStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps in-memory databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	store, err := NewBotStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewBotStore wraps an open database and creates the tables
func NewBotStore(db *sql.DB) (*BotStore, error) {
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &BotStore{db: db}, nil
}

// Close closes the database
func (s *BotStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *BotStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Count returns the number of stored bots
func (s *BotStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bots").Scan(&n); err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return n, nil
}

// Create stores a new bot under a fresh id
func (s *BotStore) Create(ctx context.Context, name string, docs []StoredDocument, urls []string) (internal.BotDescriptor, error) {
	id := uuid.NewString()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO bots (id, name) VALUES (?, ?)", id, name); err != nil {
			return fmt.Errorf("insert bot failed: %w", err)
		}
		return writeChildren(ctx, tx, id, docs, urls)
	})
	if err != nil {
		return internal.BotDescriptor{}, err
	}
	return describe(id, name, docs, urls), nil
}

// Update replaces the name, documents and URLs of bot id
func (s *BotStore) Update(ctx context.Context, id, name string, docs []StoredDocument, urls []string) (internal.BotDescriptor, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE bots SET name = ? WHERE id = ?", name, id)
		if err != nil {
			return fmt.Errorf("update bot failed: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update bot failed: %w", err)
		} else if n == 0 {
			return ErrBotNotFound
		}
		for _, table := range []string{"bot_documents", "bot_urls"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE bot_id = ?", id); err != nil {
				return fmt.Errorf("clear %s failed: %w", table, err)
			}
		}
		return writeChildren(ctx, tx, id, docs, urls)
	})
	if err != nil {
		return internal.BotDescriptor{}, err
	}
	return describe(id, name, docs, urls), nil
}

// Get loads one bot
func (s *BotStore) Get(ctx context.Context, id string) (internal.BotDescriptor, error) {
	var name string
	err := s.db.QueryRowContext(ctx, "SELECT name FROM bots WHERE id = ?", id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return internal.BotDescriptor{}, ErrBotNotFound
	}
	if err != nil {
		return internal.BotDescriptor{}, fmt.Errorf("query bot failed: %w", err)
	}

	docs, err := s.Documents(ctx, id)
	if err != nil {
		return internal.BotDescriptor{}, err
	}
	urls, err := s.urls(ctx, id)
	if err != nil {
		return internal.BotDescriptor{}, err
	}
	return describe(id, name, docs, urls), nil
}

// IDs lists bot ids in insertion order
func (s *BotStore) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM bots ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return ids, nil
}

// Documents returns the stored documents of bot id, content included
func (s *BotStore) Documents(ctx context.Context, id string) ([]StoredDocument, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, content FROM bot_documents WHERE bot_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("query documents failed: %w", err)
	}
	defer rows.Close()

	var docs []StoredDocument
	for rows.Next() {
		var doc StoredDocument
		if err := rows.Scan(&doc.Name, &doc.Content); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return docs, nil
}

func (s *BotStore) urls(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM bot_urls WHERE bot_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("query urls failed: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return urls, nil
}

func (s *BotStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func writeChildren(ctx context.Context, tx *sql.Tx, id string, docs []StoredDocument, urls []string) error {
	for i, doc := range docs {
		if _, err := tx.ExecContext(ctx, "INSERT INTO bot_documents (bot_id, position, name, content) VALUES (?, ?, ?, ?)", id, i, doc.Name, doc.Content); err != nil {
			return fmt.Errorf("insert document failed: %w", err)
		}
	}
	for i, u := range urls {
		if _, err := tx.ExecContext(ctx, "INSERT INTO bot_urls (bot_id, position, url) VALUES (?, ?, ?)", id, i, u); err != nil {
			return fmt.Errorf("insert url failed: %w", err)
		}
	}
	return nil
}

func describe(id, name string, docs []StoredDocument, urls []string) internal.BotDescriptor {
	bot := internal.BotDescriptor{ID: id, Name: name, Documents: []internal.Document{}, URLs: []string{}}
	for _, doc := range docs {
		bot.Documents = append(bot.Documents, internal.Document{Name: doc.Name})
	}
	bot.URLs = append(bot.URLs, urls...)
	return bot
}
