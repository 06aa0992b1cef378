package lflist

// relation selects how far searchFrom walks relative to the search key.
type relation uint8

const (
	// lowerOrEqual stops at the last node with key <= k.
	lowerOrEqual relation = iota
	// strictlyLower stops at the last node with key < k.
	strictlyLower
)

func (r relation) holds(c int) bool {
	if r == strictlyLower {
		return c < 0
	}
	return c <= 0
}

// searchFrom walks from curr and returns two adjacent nodes such that
// rel(curr.key, k) holds and rel(next.key, k) does not. Marked successors met
// on the way are spliced out before the walk moves past them.
func (l *List[K, V]) searchFrom(k Key[K], curr *Node[K, V], rel relation) (*Node[K, V], *Node[K, V]) {
	next := curr.next()
	for rel.holds(compareKeys(l.cmp, next.key, k)) {
		// Stop helping once next is unmarked, or once curr is itself marked
		// and still points at next: curr was marked first and the chain of
		// deletions is resolved by whoever flagged curr.
		for next.marked() {
			cl := curr.load()
			if cl.mark && cl.next == next {
				break
			}
			if cl.next == next {
				l.helpMarked(curr, next)
			}
			next = curr.next()
		}
		if rel.holds(compareKeys(l.cmp, next.key, k)) {
			curr = next
			next = curr.next()
		}
	}
	return curr, next
}

// recoverFrom follows backlinks from n until it reaches an unmarked node.
// A marked node always has its backlink set, since helpFlagged records it
// before marking; the head fallback only guards that invariant.
func (l *List[K, V]) recoverFrom(n *Node[K, V]) *Node[K, V] {
	for n.marked() {
		back := n.backlink.Load()
		if back == nil {
			return l.head
		}
		l.metrics.IncBacklinkStep()
		n = back
	}
	return n
}
