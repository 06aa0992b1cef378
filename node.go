package lflist

import "sync/atomic"

// link describes a node's successor. It is never mutated after it has been
// published; every transition installs a fresh link with a single
// CompareAndSwap so next, mark and flag change together.
type link[K, V any] struct {
	next *Node[K, V]
	// mark is set on a node's own link once the node is logically deleted.
	mark bool
	// flag is set on a predecessor's link while its successor is being deleted.
	flag bool
}

// Node is an entry of the list. Key and value are fixed at construction.
type Node[K, V any] struct {
	key   Key[K]
	value V
	succ  atomic.Pointer[link[K, V]]
	// backlink points at the predecessor that flagged this node. It is set
	// once, before the node is marked, and only used to resume traversal.
	backlink atomic.Pointer[Node[K, V]]
}

func newNode[K, V any](key Key[K], value V, next *Node[K, V]) *Node[K, V] {
	n := &Node[K, V]{key: key, value: value}
	n.succ.Store(&link[K, V]{next: next})
	return n
}

func newSentinels[K, V any]() (*Node[K, V], *Node[K, V]) {
	var zero V
	tail := newNode[K, V](MaxKey[K](), zero, nil)
	head := newNode(MinKey[K](), zero, tail)
	return head, tail
}

// Key returns the node's key.
func (n *Node[K, V]) Key() K {
	k, _ := n.key.Value()
	return k
}

// Value returns the value the node was inserted with.
func (n *Node[K, V]) Value() V {
	return n.value
}

func (n *Node[K, V]) load() *link[K, V] {
	return n.succ.Load()
}

func (n *Node[K, V]) next() *Node[K, V] {
	return n.succ.Load().next
}

func (n *Node[K, V]) marked() bool {
	return n.succ.Load().mark
}

// casLink replaces the link (expNext, expMark, expFlag) with
// (newNext, newMark, newFlag). On failure it returns the link that was
// observed instead.
func (n *Node[K, V]) casLink(expNext *Node[K, V], expMark, expFlag bool, newNext *Node[K, V], newMark, newFlag bool) (*link[K, V], bool) {
	cur := n.succ.Load()
	if cur.next != expNext || cur.mark != expMark || cur.flag != expFlag {
		return cur, false
	}
	if n.succ.CompareAndSwap(cur, &link[K, V]{next: newNext, mark: newMark, flag: newFlag}) {
		return nil, true
	}
	return n.succ.Load(), false
}
