// Package store persists platform entities in Postgres. Innings
// statistics tables and the fall-of-wickets log are kept as jsonb
// columns; everything else is flat relational state.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// MatchFilters contains filters for querying matches
type MatchFilters struct {
	Status string
	TeamID string
	Limit  int
	Offset int
}

// Client wraps the Postgres connection
type Client struct {
	db *sql.DB
}

// New opens a Postgres connection pool and verifies connectivity
func New(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// Ping verifies the connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the connection pool
func (c *Client) Close() error {
	return c.db.Close()
}
