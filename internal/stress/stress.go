// Package stress drives a lflist.List from many goroutines and checks the
// outcome against a model of the operations that succeeded.
package stress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/puzpuzpuz/xsync/v2"
	"golang.org/x/time/rate"

	"github.com/metailurini/lflist"
)

// Result summarises a finished run.
type Result struct {
	Mode        string
	Workers     int
	Operations  int64
	Inserts     int64
	Deletes     int64
	SearchHits  int64
	Remaining   int
	Elapsed     time.Duration
	Interrupted bool
	Stats       lflist.Stats
}

// keyCounts tracks successful inserts and deletes per key.
type keyCounts struct {
	inserts []*xsync.Counter
	deletes []*xsync.Counter
}

func newKeyCounts(n int) *keyCounts {
	kc := &keyCounts{
		inserts: make([]*xsync.Counter, n),
		deletes: make([]*xsync.Counter, n),
	}
	for i := range n {
		kc.inserts[i] = xsync.NewCounter()
		kc.deletes[i] = xsync.NewCounter()
	}
	return kc
}

type runner struct {
	cfg     *Configuration
	log     *logger.L
	list    *lflist.List[int, int]
	limiter *rate.Limiter
	counts  *keyCounts

	operations *xsync.Counter
	searchHits *xsync.Counter
}

// Run executes the workload described by cfg and verifies the final list.
// Cancelling ctx stops the workers early; what they completed is still
// verified and the result is marked as interrupted.
func Run(ctx context.Context, cfg *Configuration, log *logger.L) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	list, err := lflist.NewOrdered[int, int](lflist.WithKeyValidator(func(k int) error {
		if k < 0 || k >= cfg.KeySpace {
			return fmt.Errorf("key %d outside [0, %d)", k, cfg.KeySpace)
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	r := &runner{
		cfg:        cfg,
		log:        log,
		list:       list,
		counts:     newKeyCounts(cfg.KeySpace),
		operations: xsync.NewCounter(),
		searchHits: xsync.NewCounter(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	log.Infof("starting: mode: %s  workers: %d  operations: %d  key space: %d",
		cfg.Mode, cfg.Workers, cfg.Operations, cfg.KeySpace)

	start := time.Now()
	workers := make([]*worker, cfg.Workers)
	for i := range workers {
		workers[i] = newWorker(r, i)
	}
	interrupted := r.runWorkers(ctx, workers)
	elapsed := time.Since(start)

	if interrupted {
		log.Warn("interrupted, verifying completed operations")
	}

	var errs []error
	for _, w := range workers {
		if w.err != nil {
			errs = append(errs, w.err)
		}
	}
	if err := r.verify(workers); err != nil {
		errs = append(errs, err)
	}

	result := &Result{
		Mode:        cfg.Mode,
		Workers:     cfg.Workers,
		Operations:  r.operations.Value(),
		SearchHits:  r.searchHits.Value(),
		Remaining:   len(r.presentKeys()),
		Elapsed:     elapsed,
		Interrupted: interrupted,
		Stats:       list.Stats(),
	}
	for k := range cfg.KeySpace {
		result.Inserts += r.counts.inserts[k].Value()
		result.Deletes += r.counts.deletes[k].Value()
	}

	if err := errors.Join(errs...); err != nil {
		log.Errorf("verification: %s", err)
		return result, err
	}

	log.Infof("finished: operations: %d  elapsed: %s  remaining keys: %d",
		result.Operations, result.Elapsed, result.Remaining)
	log.Debugf("stats: %+v", result.Stats)
	return result, nil
}

// runWorkers starts every worker and waits until each has signalled that
// it finished. Workers stop early once ctx is cancelled. It reports
// whether the run was cut short.
func (r *runner) runWorkers(ctx context.Context, workers []*worker) bool {
	finished := make([]chan struct{}, len(workers))
	for i, w := range workers {
		finished[i] = make(chan struct{})
		go w.run(ctx, finished[i])
	}

	for _, f := range finished {
		<-f
	}
	return ctx.Err() != nil
}

// wait blocks on the rate limiter if there is one. It returns false if the
// worker should stop.
func (r *runner) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if r.limiter == nil {
		return true
	}
	return r.limiter.Wait(ctx) == nil
}

func (r *runner) presentKeys() []int {
	var keys []int
	for k := range r.cfg.KeySpace {
		if r.list.Contains(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// verify checks the structure of the list and that every key is present
// exactly when the recorded history says it should be.
func (r *runner) verify(workers []*worker) error {
	if err := r.list.Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}

	var errs []error
	switch r.cfg.Mode {
	case ModePartitioned:
		for _, w := range workers {
			for _, k := range w.keys {
				want := w.model[k]
				if got := r.list.Contains(k); got != want {
					errs = append(errs, fmt.Errorf("%w: key %d owned by worker %d: present %t, expected %t",
						ErrVerification, k, w.id, got, want))
				}
			}
		}
	default:
		// Successful inserts and deletes of one key alternate.
		for k := range r.cfg.KeySpace {
			diff := r.counts.inserts[k].Value() - r.counts.deletes[k].Value()
			present := r.list.Contains(k)
			if (diff == 0 && present) || (diff == 1 && !present) || diff < 0 || diff > 1 {
				errs = append(errs, fmt.Errorf("%w: key %d: %d inserts, %d deletes, present %t",
					ErrVerification, k, r.counts.inserts[k].Value(), r.counts.deletes[k].Value(), present))
			}
		}
	}
	return errors.Join(errs...)
}
