package lflist

// List is a lock-free sorted linked list mapping unique keys to values.
// All methods are safe for concurrent use and never block.
type List[K, V any] struct {
	cmp      Compare[K]
	validate func(K) error
	head     *Node[K, V]
	tail     *Node[K, V]
	metrics  *Metrics
}

// New returns an empty List ordered by cmp.
func New[K, V any](cmp Compare[K], opts ...Option[K]) (*List[K, V], error) {
	if cmp == nil {
		return nil, ErrNilComparator
	}

	o := newDefaultListOptions[K]()
	for _, opt := range opts {
		opt.apply(&o)
	}

	head, tail := newSentinels[K, V]()
	l := &List[K, V]{
		cmp:      cmp,
		validate: o.validate,
		head:     head,
		tail:     tail,
	}
	if o.metrics {
		l.metrics = newMetrics()
	}
	return l, nil
}

// NewOrdered returns an empty List ordered by Ordered. The key type must be
// a builtin ordered type or implement CmpType; otherwise ErrUnsupportedType
// is returned.
func NewOrdered[K, V any](opts ...Option[K]) (*List[K, V], error) {
	if err := ValidateCmpType[K](); err != nil {
		return nil, err
	}
	return New[K, V](Ordered[K], opts...)
}

// Search returns the node holding key. The boolean is false if the key is
// absent.
func (l *List[K, V]) Search(key K) (*Node[K, V], bool) {
	l.checkKey("search", key)

	k := KeyOf(key)
	curr, _ := l.searchFrom(k, l.head, lowerOrEqual)
	if compareKeys(l.cmp, curr.key, k) == 0 {
		return curr, true
	}
	return nil, false
}

// Insert adds key with value and returns the new node and true. If key is
// already present nothing changes, and the existing node is returned with
// false; values are never overwritten.
func (l *List[K, V]) Insert(key K, value V) (*Node[K, V], bool) {
	l.checkKey("insert", key)
	return l.insert(KeyOf(key), value)
}

// Delete removes key and returns the removed node and true. It returns
// false if the key is absent.
func (l *List[K, V]) Delete(key K) (*Node[K, V], bool) {
	l.checkKey("delete", key)
	return l.delete(KeyOf(key))
}

// Contains reports whether key is present.
func (l *List[K, V]) Contains(key K) bool {
	_, ok := l.Search(key)
	return ok
}

// Stats returns the contention counters collected so far.
func (l *List[K, V]) Stats() Stats {
	return l.metrics.Snapshot()
}

// InsertCASStats reports the total number of insert CAS retries and
// successful insertions. These counters enable contention analysis in
// benchmarks.
func (l *List[K, V]) InsertCASStats() (retries, successes int64) {
	return l.metrics.InsertCASStats()
}

func (l *List[K, V]) checkKey(op string, key K) {
	if l.validate == nil {
		return
	}
	if err := l.validate(key); err != nil {
		panic(&KeyError{Op: op, Key: key, Err: err})
	}
}
