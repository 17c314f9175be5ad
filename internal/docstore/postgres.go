package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"trend-signal-bot/internal/interfaces"
)

// Postgres stores documents in a single JSONB table keyed by (collection,
// key). Equality queries use JSONB containment so they hit a GIN index.
type Postgres struct {
	db *sql.DB
}

var _ interfaces.DocStore = (*Postgres)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection  TEXT NOT NULL,
	key         TEXT NOT NULL,
	doc         JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, key)
);
CREATE INDEX IF NOT EXISTS documents_doc_idx ON documents USING GIN (doc);`

// OpenPostgres connects, pings and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring documents schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Get(ctx context.Context, collection, key string, out any) error {
	var raw []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE collection=$1 AND key=$2`,
		collection, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading %s/%s: %w", collection, key, err)
	}
	return json.Unmarshal(raw, out)
}

func (p *Postgres) Query(ctx context.Context, collection string, filters map[string]any) ([]json.RawMessage, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(filters) == 0 {
		rows, err = p.db.QueryContext(ctx,
			`SELECT doc FROM documents WHERE collection=$1 ORDER BY key`, collection)
	} else {
		var filterJSON []byte
		filterJSON, err = json.Marshal(filters)
		if err != nil {
			return nil, fmt.Errorf("marshaling filters: %w", err)
		}
		rows, err = p.db.QueryContext(ctx,
			`SELECT doc FROM documents WHERE collection=$1 AND doc @> $2::jsonb ORDER BY key`,
			collection, filterJSON)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", collection, err)
		}
		out = append(out, json.RawMessage(raw))
	}
	return out, rows.Err()
}

func (p *Postgres) Upsert(ctx context.Context, collection, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document %s/%s: %w", collection, key, err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (collection, key, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, key) DO UPDATE SET
			doc = EXCLUDED.doc, updated_at = now()`,
		collection, key, raw)
	if err != nil {
		return fmt.Errorf("upserting %s/%s: %w", collection, key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, collection, key string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection=$1 AND key=$2`, collection, key)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, key, err)
	}
	return nil
}

func (p *Postgres) Close() error { return p.db.Close() }
