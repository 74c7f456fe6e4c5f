package outreach

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestServer(store *fakeStore, dispatcher *fakeDispatcher) *httptest.Server {
	orch := NewOrchestrator(store, dispatcher, nil, 4)
	h := NewHandler(store, orch, nil, nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return httptest.NewServer(r)
}

func TestListTracking_GroupsByStatus(t *testing.T) {
	store := newFakeStore(
		reachable("c1", StatusPendingContact),
		reachable("c2", StatusContacted),
	)
	srv := newTestServer(store, newFakeDispatcher())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tracking")
	if err != nil {
		t.Fatalf("GET /tracking: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payload struct {
		ByStatus map[Status][]Candidate `json:"byStatus"`
		Total    int                    `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 2 {
		t.Errorf("total = %d, want 2", payload.Total)
	}
	if len(payload.ByStatus) != len(AllStatuses()) {
		t.Errorf("byStatus has %d keys, want %d (empty buckets included)",
			len(payload.ByStatus), len(AllStatuses()))
	}
	if got := len(payload.ByStatus[StatusContacted]); got != 1 {
		t.Errorf("contacted bucket size = %d, want 1", got)
	}
}

func TestListTracking_RejectsUnknownStatusFilter(t *testing.T) {
	srv := newTestServer(newFakeStore(), newFakeDispatcher())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tracking?status=bogus")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestBulkContact_ReturnsAggregateResult(t *testing.T) {
	store := newFakeStore(
		reachable("c1", StatusPendingContact),
		reachable("c2", StatusInterested), // illegal source for contact
	)
	srv := newTestServer(store, newFakeDispatcher())
	defer srv.Close()

	body := `{"candidateIds":["c1","c2"],"channel":"email","template":"intro"}`
	resp, err := http.Post(srv.URL+"/tracking/bulk/contact", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (per-item failures are not HTTP errors)", resp.StatusCode)
	}

	var res BulkResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Processed != 1 || res.Failed != 1 {
		t.Errorf("tally = %d/%d, want 1/1", res.Processed, res.Failed)
	}
	if res.BatchID == "" {
		t.Error("response must carry the batch id")
	}
}

func TestBulkContact_RejectsUnknownChannel(t *testing.T) {
	srv := newTestServer(newFakeStore(), newFakeDispatcher())
	defer srv.Close()

	body := `{"candidateIds":["c1"],"channel":"fax"}`
	resp, err := http.Post(srv.URL+"/tracking/bulk/contact", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAddNote_RequiresBody(t *testing.T) {
	srv := newTestServer(newFakeStore(reachable("c1", StatusContacted)), newFakeDispatcher())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tracking/c1/note", "application/json", strings.NewReader(`{"note":"  "}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestForceStatus_UnknownCandidateIs404(t *testing.T) {
	srv := newTestServer(newFakeStore(), newFakeDispatcher())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tracking/ghost/status/force", "application/json",
		strings.NewReader(`{"newStatus":"hired"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
