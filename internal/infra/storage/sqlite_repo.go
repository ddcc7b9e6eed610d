package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLiteEventRepository implements GeometryEventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event GeometryEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO geometry_events (id, run_id, timestamp, event_type, generation, pipe_id, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.RunID, event.Timestamp, event.EventType,
		event.Generation, event.PipeID, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]GeometryEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []GeometryEvent
	for rows.Next() {
		var e GeometryEvent
		var payloadStr string
		err := rows.Scan(
			&e.ID, &e.RunID, &e.Timestamp, &e.EventType, &e.Generation, &e.PipeID, &payloadStr,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetByRunID(ctx context.Context, runID string) ([]GeometryEvent, error) {
	query := `SELECT id, run_id, timestamp, event_type, generation, pipe_id, payload FROM geometry_events WHERE run_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, runID)
}

func (r *SQLiteEventRepository) GetByGeneration(ctx context.Context, runID string, generation int) ([]GeometryEvent, error) {
	query := `SELECT id, run_id, timestamp, event_type, generation, pipe_id, payload FROM geometry_events WHERE run_id = ? AND generation = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, runID, generation)
}

func (r *SQLiteEventRepository) GetByPipeID(ctx context.Context, runID string, pipeID int) ([]GeometryEvent, error) {
	query := `SELECT id, run_id, timestamp, event_type, generation, pipe_id, payload FROM geometry_events WHERE run_id = ? AND pipe_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, runID, pipeID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, runID string, eventType string) ([]GeometryEvent, error) {
	query := `SELECT id, run_id, timestamp, event_type, generation, pipe_id, payload FROM geometry_events WHERE run_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, runID, eventType)
}

// ---------------------------------------------------------
// SQLiteGenerationRepository
// ---------------------------------------------------------

type SQLiteGenerationRepository struct {
	db *sql.DB
}

func NewSQLiteGenerationRepository(db *sql.DB) *SQLiteGenerationRepository {
	return &SQLiteGenerationRepository{db: db}
}

func (r *SQLiteGenerationRepository) Upsert(ctx context.Context, summary GenerationSummary) error {
	query := `
		INSERT INTO generations (run_id, generation, num_pipes, segments, cells_filled, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			num_pipes=excluded.num_pipes,
			segments=excluded.segments,
			cells_filled=excluded.cells_filled,
			ended_at=excluded.ended_at
	`
	_, err := r.db.ExecContext(ctx, query,
		summary.RunID, summary.Generation, summary.NumPipes,
		summary.Segments, summary.CellsFilled, summary.StartedAt, summary.EndedAt,
	)
	return err
}

func (r *SQLiteGenerationRepository) GetByRunID(ctx context.Context, runID string) ([]GenerationSummary, error) {
	query := `SELECT run_id, generation, num_pipes, segments, cells_filled, started_at, ended_at FROM generations WHERE run_id = ? ORDER BY generation ASC`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []GenerationSummary
	for rows.Next() {
		var s GenerationSummary
		if err := rows.Scan(&s.RunID, &s.Generation, &s.NumPipes, &s.Segments, &s.CellsFilled, &s.StartedAt, &s.EndedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *SQLiteGenerationRepository) Latest(ctx context.Context, runID string) (*GenerationSummary, error) {
	query := `SELECT run_id, generation, num_pipes, segments, cells_filled, started_at, ended_at FROM generations WHERE run_id = ? ORDER BY generation DESC LIMIT 1`
	var s GenerationSummary
	err := r.db.QueryRowContext(ctx, query, runID).Scan(
		&s.RunID, &s.Generation, &s.NumPipes, &s.Segments, &s.CellsFilled, &s.StartedAt, &s.EndedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
