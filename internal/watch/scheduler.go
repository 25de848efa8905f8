package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs PollAll on a fixed interval.
type Scheduler struct {
	cron     *cron.Cron
	poller   *Poller
	interval time.Duration
	log      *slog.Logger

	pollEntryID cron.EntryID
}

// NewScheduler creates a Scheduler that polls every interval. A poll still
// running when the next is due causes that tick to be skipped.
func NewScheduler(p *Poller, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	s := &Scheduler{
		cron:     c,
		poller:   p,
		interval: interval,
		log:      log,
	}

	id, err := c.AddFunc("@every "+interval.String(), s.runPoll)
	if err != nil {
		return nil, err
	}
	s.pollEntryID = id

	return s, nil
}

// Start begins running scheduled polls. The first poll runs after one
// interval; call RunNow to seed immediately.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "interval", s.interval)
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for a running poll to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextPoll returns when the next scheduled poll runs, or the zero time
// before Start.
func (s *Scheduler) NextPoll() time.Time {
	return s.cron.Entry(s.pollEntryID).Next
}

// RunNow polls every search synchronously.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.poller.PollAll(ctx)
}

func (s *Scheduler) runPoll() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	s.log.Info("scheduled poll starting")
	if err := s.poller.PollAll(ctx); err != nil {
		s.log.Error("scheduled poll failed", "error", err)
	}
}
