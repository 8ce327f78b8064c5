// Package tokens backs the HTTP surface's API-key auth with a Postgres
// token table, cached in memory and refreshed periodically.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"pdfexport/internal/config"
	"pdfexport/internal/infra/logging"
)

var (
	// ErrInvalidAPIKey signals that the provided API key is not known.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrStoreNotReady signals that the token cache has not been loaded yet,
	// e.g. while the database is still coming up.
	ErrStoreNotReady = errors.New("token store not ready")
)

// Store caches the token table in memory.
type Store struct {
	cfg config.PostgresConfig

	mu    sync.RWMutex
	cache map[string]struct{}

	dbMu sync.Mutex
	db   *sql.DB
}

// NewStore returns an unloaded Store for the given Postgres configuration.
func NewStore(cfg config.PostgresConfig) *Store {
	return &Store{cfg: cfg}
}

// Load reads all tokens from Postgres into the cache, creating the schema
// on first use.
func (s *Store) Load(ctx context.Context) error {
	db, err := s.database()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ddl := `CREATE TABLE IF NOT EXISTS api_tokens (
		token TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		comment TEXT
	);`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `SELECT token FROM api_tokens;`)
	if err != nil {
		return err
	}
	defer rows.Close()

	cache := make(map[string]struct{})
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return err
		}
		cache[token] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()
	return nil
}

// LoadStatic replaces the cache with the given tokens. Intended for tests
// and local debugging.
func (s *Store) LoadStatic(list ...string) {
	cache := make(map[string]struct{}, len(list))
	for _, token := range list {
		cache[token] = struct{}{}
	}
	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()
}

// Ready reports whether the cache has been loaded at least once.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache != nil
}

// Validate reports whether token exists in the cache.
func (s *Store) Validate(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[token]
	return ok
}

// RefreshPeriodically reloads the cache at the given interval until stop is
// closed.
func (s *Store) RefreshPeriodically(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.Load(context.Background()); err != nil {
				logging.Error("Failed to reload API tokens", "error", err.Error())
			}
		case <-stop:
			return
		}
	}
}

func (s *Store) database() (*sql.DB, error) {
	dsn, err := DSN(s.cfg)
	if err != nil {
		return nil, err
	}

	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Small control-plane table, keep the footprint low.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.db = db
	return s.db, nil
}

// DSN builds a Postgres connection string. A host that already is a
// postgres:// URL is passed through untouched.
func DSN(cfg config.PostgresConfig) (string, error) {
	if strings.HasPrefix(cfg.Host, "postgres://") || strings.HasPrefix(cfg.Host, "postgresql://") {
		return cfg.Host, nil
	}
	if cfg.Host == "" {
		return "", fmt.Errorf("postgres host is empty")
	}
	if cfg.Database == "" {
		return "", fmt.Errorf("postgres database is empty")
	}
	if cfg.User == "" {
		return "", fmt.Errorf("postgres user is empty")
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	hostPort := cfg.Host
	if !strings.Contains(hostPort, ":") {
		hostPort = fmt.Sprintf("%s:%d", hostPort, port)
	}

	u := &url.URL{Scheme: "postgres", Host: hostPort, Path: "/" + cfg.Database}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}
	q := u.Query()
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
