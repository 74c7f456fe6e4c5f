package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// EventChannel is the Redis channel the gateway forwards to clients via SSE.
const EventChannel = "EVENT_BULK_ACTION"

// actionLabels are the user-facing (Spanish) names used in toast summaries.
var actionLabels = map[string]string{
	ActionContact:      "Contactar",
	ActionResend:       "Reenviar",
	ActionUpdateStatus: "Cambiar estado",
	ActionAddNote:      "Añadir nota",
}

// Summary renders the one-line aggregate toast for a bulk result,
// e.g. "Contactar: 3 procesados, 1 fallidos".
func (r *BulkResult) Summary(action string) string {
	label, ok := actionLabels[action]
	if !ok {
		label = action
	}
	return fmt.Sprintf("%s: %d procesados, %d fallidos", label, r.Processed, r.Failed)
}

// Reporter publishes bulk results to Redis so the gateway can surface one
// aggregate notification per batch and invalidate its cached collection.
type Reporter struct {
	rdb *redis.Client
}

// NewReporter returns a configured Reporter.
func NewReporter(rdb *redis.Client) *Reporter {
	return &Reporter{rdb: rdb}
}

// Report publishes the aggregate outcome of one bulk batch. Failures are
// non-fatal: the result already went back to the caller synchronously.
func (r *Reporter) Report(ctx context.Context, action string, res *BulkResult) {
	event, _ := json.Marshal(struct {
		Type    string      `json:"type"`
		Action  string      `json:"action"`
		Summary string      `json:"summary"`
		Result  *BulkResult `json:"result"`
	}{
		Type:    EventChannel,
		Action:  action,
		Summary: res.Summary(action),
		Result:  res,
	})
	if err := r.rdb.Publish(ctx, EventChannel, event).Err(); err != nil {
		slog.Warn("publish EVENT_BULK_ACTION failed", "action", action, "err", err)
	}
}
