package lflist

// Test hooks.
// They must stay nil outside tests.
var (
	// insertCASHook is invoked right before the insert CAS on prev.
	insertCASHook func(prev any)

	// afterFlagHook is invoked after a delete flagged prev and before it helps.
	afterFlagHook func(prev, target any)

	// beforeSpliceHook is invoked before the CAS that unlinks a marked node.
	beforeSpliceHook func(prev, target any)
)
