package funnel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrApplicationNotFound is returned when an application id does not exist.
var ErrApplicationNotFound = fmt.Errorf("application not found")

// Store persists funnel applications and their stage history in PostgreSQL.
// The history column is append-only jsonb; every move appends one entry.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a configured Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns a single application by id.
func (s *Store) Get(ctx context.Context, id string) (*Application, error) {
	var (
		a   Application
		raw []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, candidate_id, role_id, stage, stage_history, created_at, updated_at
		 FROM applications WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.CandidateID, &a.RoleID, &a.Stage, &raw, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	if err := json.Unmarshal(raw, &a.History); err != nil {
		return nil, fmt.Errorf("decode stage history: %w", err)
	}
	return &a, nil
}

// MoveStage transitions an application to a new funnel stage and appends the
// transition to its history. The stage model is consulted before any write;
// a rejected move returns *MoveError and leaves the row untouched.
func (s *Store) MoveStage(ctx context.Context, id string, to Stage, changedBy, notes *string) (*Application, error) {
	var currentStr string
	err := s.pool.QueryRow(ctx,
		`SELECT stage FROM applications WHERE id = $1`, id,
	).Scan(&currentStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("fetch current stage: %w", err)
	}

	current, err := ParseStage(currentStr)
	if err != nil {
		return nil, fmt.Errorf("stored stage: %w", err)
	}
	if !IsMoveAllowed(current, to) {
		return nil, &MoveError{From: current, To: to}
	}

	entry, _ := json.Marshal(StageTransition{
		ID:        uuid.NewString(),
		ToStage:   to,
		CreatedAt: time.Now().UTC(),
		ChangedBy: changedBy,
		Notes:     notes,
	})

	var (
		a   Application
		raw []byte
	)
	err = s.pool.QueryRow(ctx,
		`UPDATE applications
		 SET stage         = $1::pipeline_stage,
		     stage_history = stage_history || $2::jsonb,
		     updated_at    = NOW()
		 WHERE id = $3
		 RETURNING id, candidate_id, role_id, stage, stage_history, created_at, updated_at`,
		string(to), fmt.Sprintf("[%s]", entry), id,
	).Scan(&a.ID, &a.CandidateID, &a.RoleID, &a.Stage, &raw, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("moveStage update: %w", err)
	}
	if err := json.Unmarshal(raw, &a.History); err != nil {
		return nil, fmt.Errorf("decode stage history: %w", err)
	}
	return &a, nil
}
