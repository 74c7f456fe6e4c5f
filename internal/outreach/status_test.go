package outreach_test

import (
	"errors"
	"testing"

	"talentflow/outreach-service/internal/outreach"
)

// allStatuses mirrors outreach.AllStatuses for matrix tests.
var allStatuses = []outreach.Status{
	outreach.StatusPendingContact, outreach.StatusContacted, outreach.StatusInterested,
	outreach.StatusScheduled, outreach.StatusCompleted, outreach.StatusNoResponse,
	outreach.StatusNotInterested, outreach.StatusHired,
}

var allEvents = []outreach.Event{
	outreach.EventContact, outreach.EventMarkInterested, outreach.EventMarkNotInterested,
	outreach.EventMarkNoResponse, outreach.EventSchedule, outreach.EventComplete,
	outreach.EventHire, outreach.EventReject,
}

// legalMoves is the full transition table: every (event, from) pair not
// listed here must be rejected.
var legalMoves = []struct {
	event outreach.Event
	from  outreach.Status
	to    outreach.Status
}{
	{outreach.EventContact, outreach.StatusPendingContact, outreach.StatusContacted},
	{outreach.EventContact, outreach.StatusNoResponse, outreach.StatusContacted},
	{outreach.EventMarkInterested, outreach.StatusContacted, outreach.StatusInterested},
	{outreach.EventMarkNotInterested, outreach.StatusContacted, outreach.StatusNotInterested},
	{outreach.EventMarkNotInterested, outreach.StatusNoResponse, outreach.StatusNotInterested},
	{outreach.EventMarkNotInterested, outreach.StatusInterested, outreach.StatusNotInterested},
	{outreach.EventMarkNotInterested, outreach.StatusScheduled, outreach.StatusNotInterested},
	{outreach.EventMarkNotInterested, outreach.StatusCompleted, outreach.StatusNotInterested},
	{outreach.EventMarkNoResponse, outreach.StatusContacted, outreach.StatusNoResponse},
	{outreach.EventSchedule, outreach.StatusInterested, outreach.StatusScheduled},
	{outreach.EventComplete, outreach.StatusScheduled, outreach.StatusCompleted},
	{outreach.EventHire, outreach.StatusCompleted, outreach.StatusHired},
	{outreach.EventReject, outreach.StatusCompleted, outreach.StatusNotInterested},
}

func isLegal(from outreach.Status, event outreach.Event) (outreach.Status, bool) {
	for _, m := range legalMoves {
		if m.from == from && m.event == event {
			return m.to, true
		}
	}
	return "", false
}

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	for _, s := range allStatuses {
		got, err := outreach.ParseStatus(string(s))
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValues(t *testing.T) {
	for _, s := range []string{"UNKNOWN", "", "Contacted", "CONTACTED", " contacted"} {
		if _, err := outreach.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── CanTransition / Apply: full matrix ─────────────────────────────────────

func TestCanTransition_FullMatrix(t *testing.T) {
	for _, from := range allStatuses {
		for _, event := range allEvents {
			_, legal := isLegal(from, event)
			if got := outreach.CanTransition(from, event); got != legal {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, event, got, legal)
			}
		}
	}
}

func TestApply_LegalMoves(t *testing.T) {
	for _, m := range legalMoves {
		got, err := outreach.Apply(m.from, m.event)
		if err != nil {
			t.Errorf("Apply(%s, %s) returned unexpected error: %v", m.from, m.event, err)
			continue
		}
		if got != m.to {
			t.Errorf("Apply(%s, %s) = %s, want %s", m.from, m.event, got, m.to)
		}
	}
}

func TestApply_IllegalMovesCarryContext(t *testing.T) {
	for _, from := range allStatuses {
		for _, event := range allEvents {
			if _, legal := isLegal(from, event); legal {
				continue
			}
			_, err := outreach.Apply(from, event)
			if err == nil {
				t.Errorf("Apply(%s, %s) expected error, got nil", from, event)
				continue
			}
			var illegalErr *outreach.IllegalTransitionError
			if !errors.As(err, &illegalErr) {
				t.Errorf("Apply(%s, %s) error type = %T, want *IllegalTransitionError", from, event, err)
				continue
			}
			if illegalErr.Current != from || illegalErr.Event != event {
				t.Errorf("IllegalTransitionError = %+v, want current=%s event=%s", illegalErr, from, event)
			}
		}
	}
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, from := range []outreach.Status{outreach.StatusNotInterested, outreach.StatusHired} {
		if !outreach.IsTerminalStatus(from) {
			t.Errorf("IsTerminalStatus(%s) should be true", from)
		}
		for _, event := range allEvents {
			if outreach.CanTransition(from, event) {
				t.Errorf("CanTransition(%s, %s) should be false (terminal status)", from, event)
			}
		}
	}
}

// ── EventForTarget ─────────────────────────────────────────────────────────

func TestEventForTarget(t *testing.T) {
	cases := []struct {
		current, target outreach.Status
		event           outreach.Event
		ok              bool
	}{
		{outreach.StatusPendingContact, outreach.StatusContacted, outreach.EventContact, true},
		{outreach.StatusNoResponse, outreach.StatusContacted, outreach.EventContact, true},
		{outreach.StatusContacted, outreach.StatusInterested, outreach.EventMarkInterested, true},
		{outreach.StatusInterested, outreach.StatusScheduled, outreach.EventSchedule, true},
		{outreach.StatusScheduled, outreach.StatusCompleted, outreach.EventComplete, true},
		{outreach.StatusCompleted, outreach.StatusHired, outreach.EventHire, true},
		{outreach.StatusCompleted, outreach.StatusNotInterested, outreach.EventMarkNotInterested, true},
		// no single event reaches these targets
		{outreach.StatusPendingContact, outreach.StatusHired, "", false},
		{outreach.StatusPendingContact, outreach.StatusInterested, "", false},
		{outreach.StatusHired, outreach.StatusContacted, "", false},
	}
	for _, c := range cases {
		event, ok := outreach.EventForTarget(c.current, c.target)
		if ok != c.ok {
			t.Errorf("EventForTarget(%s, %s) ok = %v, want %v", c.current, c.target, ok, c.ok)
			continue
		}
		if ok && event != c.event {
			t.Errorf("EventForTarget(%s, %s) = %s, want %s", c.current, c.target, event, c.event)
		}
	}
}
