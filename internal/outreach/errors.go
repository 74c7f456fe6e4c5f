package outreach

import "fmt"

// ErrNotFound is returned when a candidate id is not present in tracking.
var ErrNotFound = fmt.Errorf("candidate not found")

// Machine-readable per-item failure reasons reported in BulkResult.Errors.
// Channel reasons coming back from the dispatcher (invalid_address,
// provider_error, rate_limited, …) are passed through verbatim.
const (
	ReasonNotFound           = "not_found"
	ReasonMissingContactInfo = "missing_contact_info"
	ReasonInvalidState       = "invalid_state"
	ReasonIllegalTransition  = "illegal_transition"
	ReasonPersistence        = "persistence_error"
	ReasonLookupFailed       = "lookup_failed"
	ReasonTimeout            = "timeout"

	ReasonInvalidAddress = "invalid_address"
	ReasonProviderError  = "provider_error"
	ReasonRateLimited    = "rate_limited"
)

// IllegalTransitionError reports a status change rejected by the transition
// table, carrying the current status and the attempted event.
type IllegalTransitionError struct {
	Current Status
	Event   Event
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: event %q from status %q", e.Event, e.Current)
}

// MissingContactError reports an outbound dispatch blocked because the
// candidate has neither email nor phone on file.
type MissingContactError struct {
	CandidateID string
}

func (e *MissingContactError) Error() string {
	return fmt.Sprintf("candidate %s has no email or phone on file", e.CandidateID)
}

// ChannelError reports a delivery rejected by the downstream channel
// provider. Reason is machine-readable and surfaces verbatim in bulk
// results; candidates failing with a ChannelError are safe to retry.
type ChannelError struct {
	Reason string
	Err    error
}

func (e *ChannelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("channel error (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("channel error (%s)", e.Reason)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// PersistenceError reports a status write that failed after the outbound
// send already succeeded. The candidate was actually contacted: the recovery
// is a status repair, never a resend (which would duplicate the message).
type PersistenceError struct {
	CandidateID string
	Err         error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("status write failed for %s after successful send: %v", e.CandidateID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// BatchError reports a bulk operation that could not start at all: nothing
// was attempted for any candidate. It is the only error a bulk call returns
// directly; per-item failures always land in the aggregate result instead.
type BatchError struct {
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("bulk operation could not start: %v", e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
