package outreach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// candidateColumns is the canonical select list for tracked_candidates.
const candidateColumns = `id, role_id, first_name, last_name, email, phone, linkedin_url,
       role_title, client_name, source, status,
       created_at, updated_at, last_contact_at, response_at, days_without_response,
       notes, response_message`

// PGStore is the PostgreSQL-backed CandidateStore.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a configured PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

var _ CandidateStore = (*PGStore)(nil)

// Get returns a single tracked candidate by id.
func (s *PGStore) Get(ctx context.Context, id string) (*Candidate, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM tracked_candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

// SetStatus writes a new status, optionally appending an audit note.
// Transition legality is the orchestrator's concern, not the store's.
func (s *PGStore) SetStatus(ctx context.Context, id string, status Status, note *string) (*Candidate, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tracked_candidates
		 SET status     = $1::outreach_status,
		     notes      = CASE WHEN $2::text IS NULL THEN notes
		                       ELSE concat_ws(E'\n', notes, $2::text) END,
		     updated_at = NOW()
		 WHERE id = $3
		 RETURNING `+candidateColumns,
		string(status), note, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set status: %w", err)
	}
	return c, nil
}

// MarkContacted moves a candidate to contacted with a fresh last_contact_at
// and clears the no-response counter.
func (s *PGStore) MarkContacted(ctx context.Context, id string, at time.Time) (*Candidate, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tracked_candidates
		 SET status                = 'contacted',
		     last_contact_at       = $1,
		     days_without_response = NULL,
		     updated_at            = NOW()
		 WHERE id = $2
		 RETURNING `+candidateColumns,
		at, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mark contacted: %w", err)
	}
	return c, nil
}

// AppendNote appends free text to the candidate's notes.
func (s *PGStore) AppendNote(ctx context.Context, id string, note string) (*Candidate, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tracked_candidates
		 SET notes      = concat_ws(E'\n', notes, $1::text),
		     updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+candidateColumns,
		note, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("append note: %w", err)
	}
	return c, nil
}

// FetchTracking returns the tracked candidates, optionally scoped to one
// role, oldest first so board buckets keep a stable insertion order.
func (s *PGStore) FetchTracking(ctx context.Context, roleID string) ([]Candidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+candidateColumns+`
		 FROM tracked_candidates
		 WHERE ($1 = '' OR role_id = $1)
		 ORDER BY created_at`,
		roleID)
	if err != nil {
		return nil, fmt.Errorf("fetch tracking: %w", err)
	}
	defer rows.Close()

	candidates := make([]Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("fetch tracking scan: %w", err)
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

func scanCandidate(row pgx.Row) (*Candidate, error) {
	var c Candidate
	err := row.Scan(
		&c.ID, &c.RoleID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.LinkedInURL,
		&c.RoleTitle, &c.ClientName, &c.Source, &c.Status,
		&c.CreatedAt, &c.UpdatedAt, &c.LastContactAt, &c.ResponseAt, &c.DaysWithoutResponse,
		&c.Notes, &c.ResponseMessage,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
