// Package store records detection sessions and their ticks in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/jackc/pgx/v5"
)

// Store manages the PostgreSQL connection.
type Store struct {
	conn *pgx.Conn
}

// Session is one recorded run.
type Session struct {
	ID        uuid.UUID
	Source    string
	Params    detection.Params
	StartedAt time.Time
	EndedAt   *time.Time
	Ticks     int
	MaxScore  int
}

// TickRecord is one stored tick.
type TickRecord struct {
	Index         int
	Score         int
	Samples       int
	PixelEstimate int
	Results       []detection.Result
	RecordedAt    time.Time
}

// New connects to the database and ensures the schema exists.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			source TEXT NOT NULL,
			params JSONB NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at TIMESTAMPTZ,
			ticks INT NOT NULL DEFAULT 0,
			max_score INT NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS ticks (
			session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			tick_index INT NOT NULL,
			score INT NOT NULL,
			samples INT NOT NULL,
			pixel_estimate INT NOT NULL,
			results JSONB NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (session_id, tick_index)
		);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// StartSession registers a new session and returns its id.
func (s *Store) StartSession(ctx context.Context, source string, params detection.Params) (uuid.UUID, error) {
	id := uuid.New()
	data, err := json.Marshal(params)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode params: %w", err)
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO sessions (id, source, params)
		VALUES ($1::uuid, $2, $3::jsonb)
	`, id.String(), source, string(data))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to start session: %w", err)
	}
	return id, nil
}

// RecordTick stores one tick. Recording the same index twice overwrites it.
func (s *Store) RecordTick(ctx context.Context, session uuid.UUID, index int, tick detection.Tick) error {
	results := tick.Results
	if results == nil {
		results = []detection.Result{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO ticks (session_id, tick_index, score, samples, pixel_estimate, results)
		VALUES ($1::uuid, $2, $3, $4, $5, $6::jsonb)
		ON CONFLICT (session_id, tick_index) DO UPDATE SET
			score = EXCLUDED.score,
			samples = EXCLUDED.samples,
			pixel_estimate = EXCLUDED.pixel_estimate,
			results = EXCLUDED.results,
			recorded_at = NOW()
	`, session.String(), index, tick.Score, tick.Samples, tick.PixelEstimate, string(data))
	if err != nil {
		return fmt.Errorf("failed to record tick %d: %w", index, err)
	}
	return nil
}

// EndSession stamps the session's end time and summary.
func (s *Store) EndSession(ctx context.Context, session uuid.UUID) error {
	_, err := s.conn.Exec(ctx, `
		UPDATE sessions SET
			ended_at = NOW(),
			ticks = (SELECT COUNT(*) FROM ticks WHERE session_id = $1::uuid),
			max_score = COALESCE((SELECT MAX(score) FROM ticks WHERE session_id = $1::uuid), 0)
		WHERE id = $1::uuid
	`, session.String())
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// GetSession loads a session by id. It returns pgx.ErrNoRows if absent.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var (
		sess   Session
		params []byte
	)
	err := s.conn.QueryRow(ctx, `
		SELECT source, params, started_at, ended_at, ticks, max_score
		FROM sessions WHERE id = $1::uuid
	`, id.String()).Scan(&sess.Source, &params, &sess.StartedAt, &sess.EndedAt, &sess.Ticks, &sess.MaxScore)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &sess.Params); err != nil {
		return nil, fmt.Errorf("failed to decode params: %w", err)
	}
	sess.ID = id
	return &sess, nil
}

// Ticks returns a session's ticks in index order.
func (s *Store) Ticks(ctx context.Context, session uuid.UUID) ([]TickRecord, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT tick_index, score, samples, pixel_estimate, results, recorded_at
		FROM ticks WHERE session_id = $1::uuid
		ORDER BY tick_index
	`, session.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var records []TickRecord
	for rows.Next() {
		var (
			r       TickRecord
			results []byte
		)
		if err := rows.Scan(&r.Index, &r.Score, &r.Samples, &r.PixelEstimate, &results, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		if err := json.Unmarshal(results, &r.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
