package stress

import (
	"context"
	"fmt"
)

type worker struct {
	id     int
	runner *runner
	rng    *xorshift

	// partitioned mode only: the keys this worker owns and whether each
	// of them is currently present
	keys  []int
	model map[int]bool

	err error
}

func newWorker(r *runner, id int) *worker {
	w := &worker{
		id:     id,
		runner: r,
		rng:    newXorshift(workerSeed(r.cfg.Seed, id)),
	}
	if r.cfg.Mode == ModePartitioned {
		w.model = make(map[int]bool)
		for k := id; k < r.cfg.KeySpace; k += r.cfg.Workers {
			w.keys = append(w.keys, k)
		}
	}
	return w
}

func (w *worker) run(ctx context.Context, finished chan<- struct{}) {
	defer close(finished)

	log := w.runner.log
	log.Debugf("worker %d: starting", w.id)

	var completed int
	for i := range w.runner.cfg.Operations {
		if !w.runner.wait(ctx) {
			log.Debugf("worker %d: stopped after %d operations", w.id, completed)
			return
		}

		var err error
		switch w.runner.cfg.Mode {
		case ModePartitioned:
			err = w.partitioned(i)
		case ModeOverlapping:
			err = w.overlapping(i)
		default:
			err = w.mixed()
		}
		w.runner.operations.Inc()
		completed++

		if err != nil {
			w.err = fmt.Errorf("%w: worker %d: %w", ErrVerification, w.id, err)
			log.Errorf("worker %d: %s", w.id, err)
			return
		}
	}
	log.Debugf("worker %d: finished %d operations", w.id, completed)
}

// mixed picks a random key and operation.
func (w *worker) mixed() error {
	cfg := w.runner.cfg
	key := w.rng.intn(cfg.KeySpace)
	choice := w.rng.intn(100)
	switch {
	case choice < cfg.InsertPercent:
		w.insert(key)
		return nil
	case choice < cfg.InsertPercent+cfg.DeletePercent:
		return w.delete(key)
	}
	return w.search(key)
}

// overlapping inserts and then deletes each key in turn, so every worker
// contends on the same keys in the same order.
func (w *worker) overlapping(i int) error {
	key := (i / 2) % w.runner.cfg.KeySpace
	if i%2 == 0 {
		w.insert(key)
	} else if err := w.delete(key); err != nil {
		return err
	}
	return w.search(key)
}

// partitioned sweeps the worker's own keys, inserting all of them and then
// deleting all of them. No other worker touches these keys, so every
// outcome is known in advance.
func (w *worker) partitioned(i int) error {
	l := w.runner.list
	key := w.keys[i%len(w.keys)]
	inserting := (i/len(w.keys))%2 == 0

	if inserting {
		n, ok := l.Insert(key, key)
		if !ok {
			return fmt.Errorf("insert %d rejected, existing value %d", key, n.Value())
		}
		w.runner.counts.inserts[key].Inc()
		w.model[key] = true
	} else {
		n, ok := l.Delete(key)
		if !ok {
			return fmt.Errorf("delete %d found nothing", key)
		}
		if n.Key() != key {
			return fmt.Errorf("delete %d removed key %d", key, n.Key())
		}
		w.runner.counts.deletes[key].Inc()
		w.model[key] = false
	}

	if got := l.Contains(key); got != inserting {
		return fmt.Errorf("key %d present %t after own update", key, got)
	}
	return nil
}

func (w *worker) insert(key int) {
	if _, ok := w.runner.list.Insert(key, key); ok {
		w.runner.counts.inserts[key].Inc()
	}
}

func (w *worker) delete(key int) error {
	n, ok := w.runner.list.Delete(key)
	if !ok {
		return nil
	}
	w.runner.counts.deletes[key].Inc()
	if n.Key() != key {
		return fmt.Errorf("delete %d removed key %d", key, n.Key())
	}
	return nil
}

func (w *worker) search(key int) error {
	n, ok := w.runner.list.Search(key)
	if !ok {
		return nil
	}
	w.runner.searchHits.Inc()
	if n.Key() != key || n.Value() != key {
		return fmt.Errorf("search %d returned %d:%d", key, n.Key(), n.Value())
	}
	return nil
}
