// Package sqlite provides a SQLite-backed participation store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"giveaway-offers-backend/internal/features/participation/models"
	"giveaway-offers-backend/internal/features/participation/repository"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS participations (
	token          TEXT PRIMARY KEY,
	participant_id TEXT NOT NULL,
	prize_id       TEXT NOT NULL,
	status         TEXT NOT NULL,
	submitted_at   INTEGER NOT NULL,
	retried        INTEGER NOT NULL DEFAULT 0,
	retry_time     INTEGER,
	offer_id       TEXT NOT NULL DEFAULT '',
	verified_at    INTEGER,
	delivered_at   INTEGER,
	payout_address TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_participations_prize ON participations (prize_id, submitted_at);
`

// Store persists participations in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nullableMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func timePtr(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	t := fromMillis(value.Int64)
	return &t
}

// Open opens the SQLite file and creates the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

var _ repository.ParticipationRepository = (*Store)(nil)

func (s *Store) Put(ctx context.Context, token string, p *models.Participation) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	retried := 0
	if p.Retried {
		retried = 1
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO participations (
		   token, participant_id, prize_id, status, submitted_at,
		   retried, retry_time, offer_id, verified_at, delivered_at, payout_address
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(token) DO UPDATE SET
		   participant_id = excluded.participant_id,
		   prize_id       = excluded.prize_id,
		   status         = excluded.status,
		   submitted_at   = excluded.submitted_at,
		   retried        = excluded.retried,
		   retry_time     = excluded.retry_time,
		   offer_id       = excluded.offer_id,
		   verified_at    = excluded.verified_at,
		   delivered_at   = excluded.delivered_at,
		   payout_address = excluded.payout_address`,
		token,
		p.ParticipantID,
		p.PrizeID,
		string(p.Status),
		toMillis(p.SubmittedAt),
		retried,
		nullableMillis(p.RetryTime),
		p.OfferID,
		nullableMillis(p.VerifiedAt),
		nullableMillis(p.DeliveredAt),
		p.PayoutAddress,
	)
	if err != nil {
		return fmt.Errorf("put participation: %w", err)
	}
	return nil
}

const selectColumns = `token, participant_id, prize_id, status, submitted_at,
	retried, retry_time, offer_id, verified_at, delivered_at, payout_address`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipation(row rowScanner) (*models.Participation, error) {
	var (
		p           models.Participation
		status      string
		submittedAt int64
		retried     int
		retryTime   sql.NullInt64
		verifiedAt  sql.NullInt64
		delivered   sql.NullInt64
	)
	if err := row.Scan(&p.Token, &p.ParticipantID, &p.PrizeID, &status, &submittedAt,
		&retried, &retryTime, &p.OfferID, &verifiedAt, &delivered, &p.PayoutAddress); err != nil {
		return nil, err
	}
	p.Status = models.Status(status)
	p.SubmittedAt = fromMillis(submittedAt)
	p.Retried = retried != 0
	p.RetryTime = timePtr(retryTime)
	p.VerifiedAt = timePtr(verifiedAt)
	p.DeliveredAt = timePtr(delivered)
	return &p, nil
}

func (s *Store) Get(ctx context.Context, token string) (*models.Participation, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM participations WHERE token = ?`, token)
	p, err := scanParticipation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get participation: %w", err)
	}
	return p, nil
}

func (s *Store) ListByPrize(ctx context.Context, prizeID string) ([]*models.Participation, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM participations WHERE prize_id = ? ORDER BY submitted_at, token`, prizeID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	items := []*models.Participation{}
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participations: %w", err)
	}
	return items, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
