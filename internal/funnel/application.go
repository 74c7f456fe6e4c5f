package funnel

import (
	"time"

	"github.com/google/uuid"
)

// StageTransition is one append-only entry in an application's stage history.
type StageTransition struct {
	ID        string    `json:"id"`
	ToStage   Stage     `json:"toStage"`
	CreatedAt time.Time `json:"createdAt"`
	ChangedBy *string   `json:"changedBy,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

// Application tracks one candidate's position in the recruiting funnel for a
// single role. The outreach lifecycle is tracked separately (internal/outreach).
type Application struct {
	ID          string            `json:"id"`
	CandidateID string            `json:"candidateId"`
	RoleID      string            `json:"roleId"`
	Stage       Stage             `json:"stage"`
	History     []StageTransition `json:"history"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Move advances the application to a new stage, appending a history entry.
// Returns *MoveError when the stage model rejects the move.
func (a *Application) Move(to Stage, changedBy, notes *string) error {
	if !IsMoveAllowed(a.Stage, to) {
		return &MoveError{From: a.Stage, To: to}
	}
	now := time.Now().UTC()
	a.Stage = to
	a.UpdatedAt = now
	a.History = append(a.History, StageTransition{
		ID:        uuid.NewString(),
		ToStage:   to,
		CreatedAt: now,
		ChangedBy: changedBy,
		Notes:     notes,
	})
	return nil
}

// MoveError reports a stage move rejected by the funnel model.
type MoveError struct {
	From Stage
	To   Stage
}

func (e *MoveError) Error() string {
	return "funnel: move " + string(e.From) + " → " + string(e.To) + " is not allowed"
}
