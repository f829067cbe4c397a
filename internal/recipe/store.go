package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store defines the interface for recipe data operations.
type Store interface {
	GetDetail(ctx context.Context, id int) (*Detail, error)
	SaveDetail(ctx context.Context, detail *Detail) error
	SaveSearch(ctx context.Context, search *Search) error
	RecentSearches(ctx context.Context, limit int) ([]*Search, error)
}

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create recipe_details table if not exists
	schema := `
	CREATE TABLE IF NOT EXISTS recipe_details (
		id INTEGER PRIMARY KEY,
		title TEXT,
		payload JSONB NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe_details table: %w", err)
	}

	// Create searches table if not exists
	schema = `
	CREATE TABLE IF NOT EXISTS searches (
		id UUID PRIMARY KEY,
		mood TEXT,
		max_time INTEGER,
		cuisine TEXT,
		keyword TEXT,
		term TEXT,
		result_count INTEGER,
		created_at TIMESTAMPTZ NOT NULL
	);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create searches table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// GetDetail retrieves a cached recipe detail. It returns nil, nil when the
// recipe has not been cached yet.
func (s *PostgresStore) GetDetail(ctx context.Context, id int) (*Detail, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM recipe_details WHERE id = $1", id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe detail: %w", err)
	}

	var d Detail
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe detail: %w", err)
	}
	return &d, nil
}

// SaveDetail caches a recipe detail, replacing any previous copy.
func (s *PostgresStore) SaveDetail(ctx context.Context, detail *Detail) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe detail: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO recipe_details (id, title, payload, fetched_at) VALUES ($1, $2, $3, now()) ON CONFLICT (id) DO UPDATE SET title = $2, payload = $3, fetched_at = now()",
		detail.ID,
		detail.Title,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe detail: %w", err)
	}
	return nil
}

// SaveSearch records a form submission.
func (s *PostgresStore) SaveSearch(ctx context.Context, search *Search) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO searches (id, mood, max_time, cuisine, keyword, term, result_count, created_at)
		VALUES (:id, :mood, :max_time, :cuisine, :keyword, :term, :result_count, :created_at)`,
		search,
	)
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}
	return nil
}

// RecentSearches returns up to limit searches, newest first.
func (s *PostgresStore) RecentSearches(ctx context.Context, limit int) ([]*Search, error) {
	var searches []*Search
	err := s.db.SelectContext(ctx, &searches,
		"SELECT id, mood, max_time, cuisine, keyword, term, result_count, created_at FROM searches ORDER BY created_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent searches: %w", err)
	}
	return searches, nil
}
