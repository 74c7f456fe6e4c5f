package outreach

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"talentflow/outreach-service/internal/telemetry"
)

// CandidateStore is the authoritative persistence contract the orchestrator
// writes through. Implementations must apply each call atomically per
// candidate; the orchestrator never batches writes across candidates.
type CandidateStore interface {
	Get(ctx context.Context, id string) (*Candidate, error)
	// SetStatus writes a status and optionally appends an audit note. It does
	// not validate the transition: the orchestrator already has, and the
	// force path deliberately skips validation.
	SetStatus(ctx context.Context, id string, status Status, note *string) (*Candidate, error)
	// MarkContacted moves the candidate to contacted, resets last_contact_at
	// to at and clears days_without_response.
	MarkContacted(ctx context.Context, id string, at time.Time) (*Candidate, error)
	AppendNote(ctx context.Context, id string, note string) (*Candidate, error)
	FetchTracking(ctx context.Context, roleID string) ([]Candidate, error)
}

// ContactDispatcher delivers one outbound message to one candidate.
// A rejected delivery returns *ChannelError with a machine-readable reason.
type ContactDispatcher interface {
	Send(ctx context.Context, c *Candidate, channel Channel, template string) error
}

// DispatchLimiter bounds outbound sends per channel. Satisfied by
// ratelimit.ChannelLimiter; nil disables limiting.
type DispatchLimiter interface {
	Allow(ctx context.Context, channel string) (bool, error)
}

// ItemError is one per-candidate failure inside a bulk result. Candidate ids
// are always listed so the caller can retry exactly the failed subset.
type ItemError struct {
	CandidateID string `json:"candidateId"`
	Reason      string `json:"reason"`
}

// BulkResult is the aggregate outcome of one bulk operation.
// Processed + Failed always equals the number of distinct ids submitted;
// ids absent from tracking count as failed with reason not_found.
type BulkResult struct {
	BatchID   string      `json:"batchId"`
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors"`
}

// Actions label bulk operations in metrics and notifications.
const (
	ActionContact      = "contact"
	ActionResend       = "resend"
	ActionUpdateStatus = "update_status"
	ActionAddNote      = "add_note"
)

// Orchestrator executes bulk outreach operations with per-item isolation:
// a failure on one candidate never blocks the rest and never rolls back
// candidates that already succeeded. Status is only ever mutated after the
// external side effect confirmed; the board must never show "contacted"
// for a message that was not sent.
type Orchestrator struct {
	store      CandidateStore
	dispatcher ContactDispatcher
	limiter    DispatchLimiter
	fanOut     int
}

// NewOrchestrator returns a configured Orchestrator. fanOut bounds the
// concurrent per-candidate dispatches; limiter may be nil.
func NewOrchestrator(store CandidateStore, dispatcher ContactDispatcher, limiter DispatchLimiter, fanOut int) *Orchestrator {
	if fanOut < 1 {
		fanOut = 1
	}
	return &Orchestrator{
		store:      store,
		dispatcher: dispatcher,
		limiter:    limiter,
		fanOut:     fanOut,
	}
}

// ContactMultiple sends an initial (or renewed) contact message to each
// candidate and, per candidate, moves pending_contact|no_response →
// contacted once the dispatch succeeded. Missing-contact candidates fail
// individually with missing_contact_info; they never block the batch.
func (o *Orchestrator) ContactMultiple(ctx context.Context, ids []string, channel Channel, template string) (*BulkResult, error) {
	return o.run(ctx, ActionContact, ids, func(ctx context.Context, id string) *ItemError {
		c, ie := o.lookup(ctx, id)
		if ie != nil {
			return ie
		}
		if err := c.CheckContactable(); err != nil {
			slog.Info("bulk contact: skipping unreachable candidate", "candidateId", id, "err", err)
			return &ItemError{CandidateID: id, Reason: ReasonMissingContactInfo}
		}
		if !CanTransition(c.Status, EventContact) {
			return &ItemError{CandidateID: id, Reason: ReasonInvalidState}
		}
		if ie := o.dispatch(ctx, c, channel, template); ie != nil {
			return ie
		}
		if _, err := o.store.MarkContacted(ctx, id, time.Now().UTC()); err != nil {
			perr := &PersistenceError{CandidateID: id, Err: err}
			slog.Warn("bulk contact: status write failed after successful send",
				"candidateId", id, "err", perr)
			return &ItemError{CandidateID: id, Reason: ReasonPersistence}
		}
		return nil
	})
}

// ResendToNoResponse re-sends to candidates stuck in no_response over their
// last known channel. On success the candidate returns to contacted with a
// fresh last_contact_at and days_without_response cleared.
func (o *Orchestrator) ResendToNoResponse(ctx context.Context, ids []string, customMessage string) (*BulkResult, error) {
	return o.run(ctx, ActionResend, ids, func(ctx context.Context, id string) *ItemError {
		c, ie := o.lookup(ctx, id)
		if ie != nil {
			return ie
		}
		if c.Status != StatusNoResponse {
			return &ItemError{CandidateID: id, Reason: ReasonInvalidState}
		}
		channel, ok := c.LastKnownChannel()
		if !ok {
			return &ItemError{CandidateID: id, Reason: ReasonMissingContactInfo}
		}
		if ie := o.dispatch(ctx, c, channel, customMessage); ie != nil {
			return ie
		}
		if _, err := o.store.MarkContacted(ctx, id, time.Now().UTC()); err != nil {
			slog.Warn("bulk resend: status write failed after successful send",
				"candidateId", id, "err", err)
			return &ItemError{CandidateID: id, Reason: ReasonPersistence}
		}
		return nil
	})
}

// UpdateStatus moves each candidate to target, resolving the implied event
// against the transition table first. Illegal moves fail individually with
// illegal_transition. mark_no_response stays reserved for the sweeper batch
// job and is never resolvable through this path.
func (o *Orchestrator) UpdateStatus(ctx context.Context, ids []string, target Status, notes *string) (*BulkResult, error) {
	return o.run(ctx, ActionUpdateStatus, ids, func(ctx context.Context, id string) *ItemError {
		c, ie := o.lookup(ctx, id)
		if ie != nil {
			return ie
		}
		event, ok := EventForTarget(c.Status, target)
		if !ok || event == EventMarkNoResponse {
			return &ItemError{CandidateID: id, Reason: ReasonIllegalTransition}
		}
		next, err := Apply(c.Status, event)
		if err != nil {
			return &ItemError{CandidateID: id, Reason: ReasonIllegalTransition}
		}
		if _, err := o.store.SetStatus(ctx, id, next, notes); err != nil {
			return &ItemError{CandidateID: id, Reason: ReasonPersistence}
		}
		return nil
	})
}

// AddNote appends a free-text note to a single candidate. Not a bulk
// operation, but it reports through the same result shape so the board layer
// handles every action uniformly.
func (o *Orchestrator) AddNote(ctx context.Context, id string, note string) (*BulkResult, error) {
	return o.run(ctx, ActionAddNote, []string{id}, func(ctx context.Context, id string) *ItemError {
		if _, ie := o.lookup(ctx, id); ie != nil {
			return ie
		}
		if _, err := o.store.AppendNote(ctx, id, note); err != nil {
			return &ItemError{CandidateID: id, Reason: ReasonPersistence}
		}
		return nil
	})
}

// ForceStatus is the explicit operator override that writes a status without
// consulting the transition table. It exists so the bypass is visible at the
// call site; regular mutations must go through UpdateStatus.
func (o *Orchestrator) ForceStatus(ctx context.Context, id string, target Status, notes *string) (*Candidate, error) {
	slog.Warn("forcing outreach status outside the transition table",
		"candidateId", id, "target", target)
	c, err := o.store.SetStatus(ctx, id, target, notes)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// run drives one bulk operation: dedupes ids, fans item out across at most
// fanOut goroutines and accumulates the tally. Item failures are captured,
// never returned; the only error run itself returns is *BatchError when the
// batch could not start at all.
func (o *Orchestrator) run(ctx context.Context, action string, ids []string, item func(ctx context.Context, id string) *ItemError) (*BulkResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &BatchError{Err: err}
	}

	res := &BulkResult{BatchID: uuid.NewString(), Errors: []ItemError{}}
	ids = dedupe(ids)
	if len(ids) == 0 {
		// Zero candidates matched: a valid empty result, not a BatchError.
		return res, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(o.fanOut)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			var ie *ItemError
			if err := ctx.Err(); err != nil {
				// Batch deadline hit before this candidate started: report
				// timeout rather than leaving the id unaccounted for.
				ie = &ItemError{CandidateID: id, Reason: ReasonTimeout}
			} else {
				ie = item(ctx, id)
			}

			mu.Lock()
			defer mu.Unlock()
			if ie != nil {
				res.Failed++
				res.Errors = append(res.Errors, *ie)
				telemetry.BulkItemsFailed.WithLabelValues(action, ie.Reason).Inc()
			} else {
				res.Processed++
				telemetry.BulkItemsProcessed.WithLabelValues(action).Inc()
			}
			return nil
		})
	}
	_ = g.Wait()

	telemetry.BulkBatches.WithLabelValues(action).Inc()
	return res, nil
}

// lookup fetches one candidate, translating store errors into item failures.
func (o *Orchestrator) lookup(ctx context.Context, id string) (*Candidate, *ItemError) {
	c, err := o.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &ItemError{CandidateID: id, Reason: ReasonNotFound}
		}
		return nil, &ItemError{CandidateID: id, Reason: ReasonLookupFailed}
	}
	return c, nil
}

// dispatch sends one message through the rate limiter and dispatcher,
// translating failures into item errors. Channel reasons pass through
// verbatim.
func (o *Orchestrator) dispatch(ctx context.Context, c *Candidate, channel Channel, template string) *ItemError {
	if o.limiter != nil {
		allowed, err := o.limiter.Allow(ctx, string(channel))
		if err != nil {
			// A limiter outage must not block outreach; log and proceed.
			slog.Warn("dispatch limiter unavailable", "channel", channel, "err", err)
		} else if !allowed {
			telemetry.RateLimitRejects.Inc()
			return &ItemError{CandidateID: c.ID, Reason: ReasonRateLimited}
		}
	}

	telemetry.DispatchSends.WithLabelValues(string(channel)).Inc()
	if err := o.dispatcher.Send(ctx, c, channel, template); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &ItemError{CandidateID: c.ID, Reason: ReasonTimeout}
		}
		var ce *ChannelError
		if errors.As(err, &ce) {
			return &ItemError{CandidateID: c.ID, Reason: ce.Reason}
		}
		return &ItemError{CandidateID: c.ID, Reason: ReasonProviderError}
	}
	return nil
}

// dedupe removes repeated ids preserving first-seen order: the input is a
// set, submitting an id twice must not double-count it.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
