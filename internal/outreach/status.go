// Package outreach contains the candidate outreach lifecycle: the status
// state machine, the grouping queries behind the Kanban board, and the bulk
// action orchestrator. It is transport-agnostic; the HTTP handler layer
// lives in handler.go and delegates everything here.
//
// Status graph (event-driven):
//
//	PENDING_CONTACT ──contact──► CONTACTED ──mark_interested──► INTERESTED ──schedule──► SCHEDULED
//	       ▲                         │                              │                        │
//	       │                   mark_no_response                     │                     complete
//	       │                         ▼                              │                        ▼
//	       └───────contact──── NO_RESPONSE                          │                    COMPLETED ──hire──► HIRED
//	                                 │                              │                        │
//	                                 └────mark_not_interested───────┴─────────┬──────reject──┘
//	                                                                          ▼
//	                                                                   NOT_INTERESTED
//
// NOT_INTERESTED and HIRED are terminal.
package outreach

import "fmt"

// Status values mirror the outreach_status enum in PostgreSQL.
type Status string

const (
	StatusPendingContact Status = "pending_contact"
	StatusContacted      Status = "contacted"
	StatusInterested     Status = "interested"
	StatusNotInterested  Status = "not_interested"
	StatusNoResponse     Status = "no_response"
	StatusScheduled      Status = "scheduled"
	StatusCompleted      Status = "completed"
	StatusHired          Status = "hired"
)

// Event names an outreach lifecycle transition.
type Event string

const (
	EventContact           Event = "contact"
	EventMarkInterested    Event = "mark_interested"
	EventMarkNotInterested Event = "mark_not_interested"
	EventMarkNoResponse    Event = "mark_no_response"
	EventSchedule          Event = "schedule"
	EventComplete          Event = "complete"
	EventHire              Event = "hire"
	EventReject            Event = "reject"
)

// transitions lists every legal (event, from-set) → to move.
// mark_no_response is only ever fired by the sweeper batch job, never by a
// direct user action.
var transitions = map[Event]struct {
	from []Status
	to   Status
}{
	EventContact:           {from: []Status{StatusPendingContact, StatusNoResponse}, to: StatusContacted},
	EventMarkInterested:    {from: []Status{StatusContacted}, to: StatusInterested},
	EventMarkNotInterested: {from: []Status{StatusContacted, StatusNoResponse, StatusInterested, StatusScheduled, StatusCompleted}, to: StatusNotInterested},
	EventMarkNoResponse:    {from: []Status{StatusContacted}, to: StatusNoResponse},
	EventSchedule:          {from: []Status{StatusInterested}, to: StatusScheduled},
	EventComplete:          {from: []Status{StatusScheduled}, to: StatusCompleted},
	EventHire:              {from: []Status{StatusCompleted}, to: StatusHired},
	EventReject:            {from: []Status{StatusCompleted}, to: StatusNotInterested},
}

// AllStatuses returns every outreach status in board-column order.
func AllStatuses() []Status {
	return []Status{
		StatusPendingContact, StatusContacted, StatusInterested,
		StatusScheduled, StatusCompleted, StatusNoResponse,
		StatusNotInterested, StatusHired,
	}
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	for _, known := range AllStatuses() {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown outreach status %q", s)
}

// IsTerminalStatus returns true for statuses with no outgoing transitions.
func IsTerminalStatus(s Status) bool {
	return s == StatusNotInterested || s == StatusHired
}

// CanTransition returns true when event may fire from the current status.
// This is the single authority on transition legality: every mutation path
// (bulk orchestrator, single-candidate edits, the no-response sweeper) asks
// here instead of re-deriving legality at the call site.
func CanTransition(current Status, event Event) bool {
	t, ok := transitions[event]
	if !ok {
		return false
	}
	for _, s := range t.from {
		if s == current {
			return true
		}
	}
	return false
}

// Apply fires event from the current status and returns the resulting one.
// An illegal move returns *IllegalTransitionError carrying both the status
// and the attempted event.
func Apply(current Status, event Event) (Status, error) {
	if !CanTransition(current, event) {
		return "", &IllegalTransitionError{Current: current, Event: event}
	}
	return transitions[event].to, nil
}

// eventResolutionOrder fixes the lookup order for EventForTarget so that a
// (current, target) pair reachable through two events resolves the same way
// every time. completed → not_interested matches mark_not_interested before
// reject; both land on the same status.
var eventResolutionOrder = []Event{
	EventContact, EventMarkInterested, EventMarkNotInterested,
	EventMarkNoResponse, EventSchedule, EventComplete, EventHire, EventReject,
}

// EventForTarget resolves the event implied by "move this candidate to
// target" given its current status. Returns false when no single legal event
// produces target from current; the caller reports an illegal transition.
func EventForTarget(current, target Status) (Event, bool) {
	for _, event := range eventResolutionOrder {
		t := transitions[event]
		if t.to != target {
			continue
		}
		for _, s := range t.from {
			if s == current {
				return event, true
			}
		}
	}
	return "", false
}
