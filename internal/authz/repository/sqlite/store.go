package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"calendar-share-bot/internal/authz/repository"
	"calendar-share-bot/internal/model"
)

// Store is the SQLite-backed authorization state store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and initializes the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialize concurrent writers instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS authorization_state (
		identity        INTEGER PRIMARY KEY,
		status          TEXT    NOT NULL,
		pending_nonce   TEXT    NOT NULL DEFAULT '',
		nonce_issued_at INTEGER NOT NULL DEFAULT 0,
		access_token    TEXT    NOT NULL DEFAULT '',
		refresh_token   TEXT    NOT NULL DEFAULT '',
		token_expiry    INTEGER NOT NULL DEFAULT 0,
		updated_at      INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create authorization_state table: %w", err)
	}

	// Nonces must be unique across all active records.
	_, err = s.db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_authorization_state_nonce
		ON authorization_state (pending_nonce) WHERE pending_nonce != ''`)
	if err != nil {
		return fmt.Errorf("failed to create nonce index: %w", err)
	}
	return nil
}

// Get returns the state for an identity, or repository.ErrNotFound.
func (s *Store) Get(ctx context.Context, identity int64) (model.AuthorizationState, error) {
	row := s.db.QueryRowContext(ctx, `SELECT identity, status, pending_nonce, nonce_issued_at,
		access_token, refresh_token, token_expiry, updated_at
		FROM authorization_state WHERE identity = ?`, identity)
	return scanState(row)
}

// FindByNonce returns the state holding the given pending nonce.
func (s *Store) FindByNonce(ctx context.Context, nonce string) (model.AuthorizationState, error) {
	if nonce == "" {
		return model.AuthorizationState{}, repository.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT identity, status, pending_nonce, nonce_issued_at,
		access_token, refresh_token, token_expiry, updated_at
		FROM authorization_state WHERE pending_nonce = ?`, nonce)
	return scanState(row)
}

// Put upserts the full record for state.Identity.
func (s *Store) Put(ctx context.Context, state model.AuthorizationState) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO authorization_state
		(identity, status, pending_nonce, nonce_issued_at, access_token, refresh_token, token_expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			status = excluded.status,
			pending_nonce = excluded.pending_nonce,
			nonce_issued_at = excluded.nonce_issued_at,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expiry = excluded.token_expiry,
			updated_at = excluded.updated_at`,
		state.Identity,
		string(state.Status),
		state.PendingNonce,
		unixOrZero(state.NonceIssuedAt),
		state.AccessToken,
		state.RefreshToken,
		unixOrZero(state.TokenExpiry),
		unixOrZero(state.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert authorization state: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(row rowScanner) (model.AuthorizationState, error) {
	var state model.AuthorizationState
	var status string
	var nonceIssuedAt, tokenExpiry, updatedAt int64

	err := row.Scan(&state.Identity, &status, &state.PendingNonce, &nonceIssuedAt,
		&state.AccessToken, &state.RefreshToken, &tokenExpiry, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AuthorizationState{}, repository.ErrNotFound
	}
	if err != nil {
		return model.AuthorizationState{}, fmt.Errorf("failed to scan authorization state: %w", err)
	}

	state.Status = model.AuthStatus(status)
	state.NonceIssuedAt = timeOrZero(nonceIssuedAt)
	state.TokenExpiry = timeOrZero(tokenExpiry)
	state.UpdatedAt = timeOrZero(updatedAt)
	return state, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
