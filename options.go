package lflist

// Option configures a List.
type Option[K any] interface {
	apply(*listOptions[K])
}

type listOptions[K any] struct {
	validate func(K) error
	metrics  bool
}

func newDefaultListOptions[K any]() listOptions[K] {
	return listOptions[K]{
		metrics: true,
	}
}

// WithKeyValidator installs a precondition check run on every key passed to
// Search, Insert and Delete. A key it rejects is a caller bug: the operation
// panics with a *KeyError before touching the list.
func WithKeyValidator[K any](validate func(K) error) Option[K] {
	return funcOption[K](func(opts *listOptions[K]) {
		opts.validate = validate
	})
}

// WithoutMetrics disables the contention counters. Stats then reports zeros.
func WithoutMetrics[K any]() Option[K] {
	return funcOption[K](func(opts *listOptions[K]) {
		opts.metrics = false
	})
}

type funcOption[K any] func(*listOptions[K])

func (o funcOption[K]) apply(opts *listOptions[K]) {
	o(opts)
}
