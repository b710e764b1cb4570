package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"pricetag-studio/internal/config"
	"pricetag-studio/internal/pricing"
	"pricetag-studio/internal/storage/migrations"
	"pricetag-studio/pkg/redis"
)

// ErrSessionNotFound is returned when no session exists under the id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStorage persists working sessions in PostgreSQL with a Redis
// cache in front. The payload column holds the session's persisted shape:
// settings, items and the id counter, nothing transient.
type SessionStorage struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger *zap.Logger
}

// Kind distinguishes where a session came from.
const (
	KindWeb = "web"
	KindBot = "bot"
)

func New(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (*SessionStorage, error) {
	const operation = "storage.New"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	if err := migrations.Run(ctx, db.DB, "postgres"); err != nil {
		return nil, fmt.Errorf("%s: migrations: %w", operation, err)
	}

	logger.Info("Successfully connected to PostgreSQL")
	return &SessionStorage{db: db, redis: redisClient, logger: logger}, nil
}

// Save upserts the session payload and refreshes the cache.
func (s *SessionStorage) Save(ctx context.Context, kind string, session *pricing.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	const query = `
        INSERT INTO sessions (id, kind, payload, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        ON CONFLICT (id) DO UPDATE SET payload = $3, updated_at = NOW()
    `
	if _, err := s.db.ExecContext(ctx, query, session.ID, kind, payload); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if err := s.redis.Set(ctx, sessionKey(session.ID), payload); err != nil {
		s.logger.Warn("Failed to cache session", zap.String("session_id", session.ID), zap.Error(err))
	}
	return nil
}

// Get loads a session, Redis first, then PostgreSQL. The rehydrated
// session reports Dirty until its first recomputation.
func (s *SessionStorage) Get(ctx context.Context, id string) (*pricing.Session, error) {
	if cached, err := s.redis.Get(ctx, sessionKey(id)); err == nil {
		var session pricing.Session
		if err := json.Unmarshal(cached, &session); err == nil {
			return &session, nil
		}
	}

	const query = `SELECT payload FROM sessions WHERE id = $1`
	var payload []byte
	err := s.db.GetContext(ctx, &payload, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session pricing.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		// A corrupted payload must not lock the user out of their session.
		s.logger.Error("Corrupted session payload, starting fresh",
			zap.String("session_id", id), zap.Error(err))
		return pricing.NewSession(id), nil
	}

	if err := s.redis.Set(ctx, sessionKey(id), payload); err != nil {
		s.logger.Warn("Failed to cache session", zap.String("session_id", id), zap.Error(err))
	}
	return &session, nil
}

// Delete removes a session from both stores.
func (s *SessionStorage) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, sessionKey(id)); err != nil {
		s.logger.Warn("Failed to drop cached session", zap.String("session_id", id), zap.Error(err))
	}
	const query = `DELETE FROM sessions WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Stats is a small admin summary over stored sessions.
type Stats struct {
	TotalSessions int `db:"total_sessions"`
	TodaySessions int `db:"today_sessions"`
	BotSessions   int `db:"bot_sessions"`
	WebSessions   int `db:"web_sessions"`
}

func (s *SessionStorage) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := s.db.GetContext(ctx, &stats, `
        SELECT
            COUNT(*) AS total_sessions,
            COUNT(*) FILTER (WHERE updated_at >= CURRENT_DATE) AS today_sessions,
            COUNT(*) FILTER (WHERE kind = 'bot') AS bot_sessions,
            COUNT(*) FILTER (WHERE kind = 'web') AS web_sessions
        FROM sessions
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}

// SessionInfo is one row of the admin session listing.
type SessionInfo struct {
	ID        string    `db:"id"`
	Kind      string    `db:"kind"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ListSessions returns the most recently touched sessions.
func (s *SessionStorage) ListSessions(ctx context.Context, limit int) ([]SessionInfo, error) {
	var infos []SessionInfo
	err := s.db.SelectContext(ctx, &infos, `
        SELECT id, kind, updated_at
        FROM sessions
        ORDER BY updated_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return infos, nil
}

func (s *SessionStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func sessionKey(id string) string {
	return "session:" + id
}
