// Package lflist implements a lock-free sorted singly linked list with
// unique keys.
//
// Every node carries one atomically replaced link holding its successor, a
// mark bit (the node itself is logically deleted) and a flag bit (the
// successor is being deleted). A delete first flags the predecessor, then
// marks the target, then unlinks it with one CAS that also clears the flag.
// Marked nodes remember the predecessor that flagged them in a backlink, so
// an operation that finds its anchor deleted resumes from there instead of
// from the head. Any goroutine that meets a half finished deletion completes
// it, which makes the list lock-free: some operation always makes progress.
//
// Search, Insert and Delete are linearizable. Negative outcomes (absent key,
// duplicate insert) are ordinary results, not errors. Unlinked nodes are
// reclaimed by the garbage collector once no goroutine references them.
package lflist
