package history

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/leadflow/forecaster/internal/prom"
)

// Pruner periodically deletes records older than the retention period.
type Pruner struct {
	store     Store
	clock     clockwork.Clock
	retention time.Duration
	interval  time.Duration
	scheduler gocron.Scheduler
	log       *log.Entry
}

// NewPruner returns a pruner; call Start to schedule it.
func NewPruner(store Store, clock clockwork.Clock, retention, interval time.Duration) *Pruner {
	return &Pruner{
		store:     store,
		clock:     clock,
		retention: retention,
		interval:  interval,
		log:       log.WithField("component", "history-pruner"),
	}
}

// Prune deletes every record created before now minus the retention period.
func (p *Pruner) Prune(ctx context.Context) (n int, err error) {
	defer prom.ErrCount(prom.HistoryPruneErrors, &err)

	cutoff := p.clock.Now().Add(-p.retention)
	n, err = p.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return n, errors.Wrap(err, "pruning forecast history")
	}
	prom.HistoryPruned(n)
	if n > 0 {
		p.log.Infof("pruned %d forecasts created before %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// Start schedules Prune every interval until Stop is called or ctx is cancelled.
func (p *Pruner) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler(gocron.WithClock(p.clock))
	if err != nil {
		return errors.Wrap(err, "creating pruning scheduler")
	}
	_, err = s.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(func() {
			if _, err := p.Prune(ctx); err != nil {
				p.log.WithError(err).Error("failed to prune forecast history")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.Wrap(err, "scheduling pruning")
	}
	s.Start()
	p.scheduler = s
	p.log.Debugf("pruning every %s with retention %s", p.interval, p.retention)
	return nil
}

// Stop waits for a running prune and stops the schedule.
func (p *Pruner) Stop() error {
	if p.scheduler == nil {
		return nil
	}
	return errors.Wrap(p.scheduler.Shutdown(), "stopping pruning scheduler")
}
