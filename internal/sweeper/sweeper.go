// Package sweeper runs the periodic batch job that moves contacted
// candidates with no reply past the configured threshold into no_response.
// It is the only writer of the contacted → no_response transition
// (outreach.EventMarkNoResponse); user-facing paths never fire it.
package sweeper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"talentflow/outreach-service/internal/telemetry"
)

// Sweeper wraps robfig/cron and owns the no-response sweep loop.
type Sweeper struct {
	cron          *cron.Cron
	pool          *pgxpool.Pool
	thresholdDays int
	spec          string // cron spec, e.g. "@every 1h"
}

// New creates a Sweeper marking candidates unresponsive after thresholdDays
// days without a reply, checking on the given cron spec.
func New(pool *pgxpool.Pool, thresholdDays int, spec string) *Sweeper {
	return &Sweeper{
		cron:          cron.New(cron.WithLogger(cron.DefaultLogger)),
		pool:          pool,
		thresholdDays: thresholdDays,
		spec:          spec,
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so a restart does not delay overdue candidates a full tick.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[sweeper] Cron started (%s), threshold: %d day(s)", s.spec, s.thresholdDays)

	go s.sweep(ctx)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Println("[sweeper] Cron stopped")
}

// sweep marks overdue contacted candidates as no_response and refreshes the
// day counter on candidates already there. The counter is a read-model
// projection of last_contact_at, recomputed here rather than live.
func (s *Sweeper) sweep(ctx context.Context) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tracked_candidates
		 SET status                = 'no_response',
		     days_without_response = GREATEST(1, EXTRACT(DAY FROM NOW() - last_contact_at)::int),
		     updated_at            = NOW()
		 WHERE status = 'contacted'
		   AND last_contact_at IS NOT NULL
		   AND last_contact_at <= NOW() - make_interval(days => $1)`,
		s.thresholdDays,
	)
	if err != nil {
		log.Printf("[sweeper] mark no_response error: %v", err)
		return
	}
	if marked := tag.RowsAffected(); marked > 0 {
		telemetry.SweeperMarked.Add(float64(marked))
		log.Printf("[sweeper] Marked %d candidate(s) as no_response", marked)
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE tracked_candidates
		 SET days_without_response = EXTRACT(DAY FROM NOW() - last_contact_at)::int
		 WHERE status = 'no_response'
		   AND last_contact_at IS NOT NULL`,
	)
	if err != nil {
		log.Printf("[sweeper] refresh day counter error: %v", err)
	}
}

// Eligible reports whether a candidate last contacted at lastContact is due
// for the no_response mark as of now, given the configured threshold.
func Eligible(lastContact, now time.Time, thresholdDays int) bool {
	return !lastContact.After(now.AddDate(0, 0, -thresholdDays))
}

// DaysWithout returns the whole days elapsed since lastContact as of now,
// never negative.
func DaysWithout(lastContact, now time.Time) int {
	d := int(now.Sub(lastContact).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
