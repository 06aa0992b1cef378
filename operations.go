package lflist

// insert links a new node for k after the last node with key <= k. It
// returns the existing node and false if k is already present.
func (l *List[K, V]) insert(k Key[K], value V) (*Node[K, V], bool) {
	prev, next := l.searchFrom(k, l.head, lowerOrEqual)
	if compareKeys(l.cmp, prev.key, k) == 0 {
		return prev, false
	}

	var n *Node[K, V]
	for {
		prevLink := prev.load()
		if prevLink.flag {
			// prev cannot take a new successor while its current one is
			// being deleted.
			l.helpFlagged(prev, prevLink.next)
		} else {
			if n == nil {
				n = newNode(k, value, next)
			} else {
				// Not yet published, a plain store is enough.
				n.succ.Store(&link[K, V]{next: next})
			}

			if insertCASHook != nil {
				insertCASHook(prev)
			}

			observed, ok := prev.casLink(next, false, false, n, false, false)
			if ok {
				l.metrics.IncInsertCASSuccess()
				return n, true
			}
			l.metrics.IncInsertCASRetry()

			if !observed.mark && observed.flag {
				l.helpFlagged(prev, observed.next)
			}
		}
		// prev may have been deleted meanwhile.
		prev = l.recoverFrom(prev)

		prev, next = l.searchFrom(k, prev, lowerOrEqual)
		if compareKeys(l.cmp, prev.key, k) == 0 {
			return prev, false
		}
	}
}

// delete removes the node with key k and returns it. It returns false if k
// is absent or if a concurrent delete of the same node won.
func (l *List[K, V]) delete(k Key[K]) (*Node[K, V], bool) {
	prev, del := l.searchFrom(k, l.head, strictlyLower)
	if compareKeys(l.cmp, del.key, k) != 0 {
		return nil, false
	}

	prev, ok := l.tryFlag(prev, del)
	if prev != nil {
		if ok && afterFlagHook != nil {
			afterFlagHook(prev, del)
		}
		l.helpFlagged(prev, del)
	}
	if !ok {
		return nil, false
	}
	return del, true
}

// tryFlag flags the link of target's predecessor. It returns the flagged
// predecessor, or nil when target left the list before it could be flagged.
// The boolean is true only for the goroutine whose CAS set the flag; a
// goroutine that finds the flag already in place only helps.
func (l *List[K, V]) tryFlag(prev, target *Node[K, V]) (*Node[K, V], bool) {
	for {
		prevLink := prev.load()
		if prevLink.next == target && !prevLink.mark && prevLink.flag {
			// Another delete owns this target; help it along.
			return prev, false
		}

		observed, ok := prev.casLink(target, false, false, target, false, true)
		if ok {
			return prev, true
		}
		l.metrics.IncFlagCASRetry()

		if observed.next == target && !observed.mark && observed.flag {
			return prev, false
		}

		prev = l.recoverFrom(prev)

		var del *Node[K, V]
		prev, del = l.searchFrom(target.key, prev, strictlyLower)
		if del != target {
			return nil, false
		}
	}
}

type pendingDeletion[K, V any] struct {
	prev, del *Node[K, V]
}

// helpFlagged completes the deletion of del, whose predecessor prev carries
// the flag for it: record the backlink, mark del, then unlink it.
//
// Marking del can require deleting del's own flagged successor first, which
// in turn can require the next one. Those nested deletions are kept on an
// explicit stack instead of recursing.
func (l *List[K, V]) helpFlagged(prev, del *Node[K, V]) {
	stack := []pendingDeletion[K, V]{{prev: prev, del: del}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		l.metrics.IncHelp()

		top.del.backlink.CompareAndSwap(nil, top.prev)
		if next, blocked := l.tryMark(top.del); blocked {
			stack = append(stack, pendingDeletion[K, V]{prev: top.del, del: next})
			continue
		}

		l.helpMarked(top.prev, top.del)
		stack = stack[:len(stack)-1]
	}
}

// tryMark sets the mark bit on del's own link. If del's link is flagged it
// returns the successor under deletion and true; that deletion has to
// finish before del can be marked.
func (l *List[K, V]) tryMark(del *Node[K, V]) (*Node[K, V], bool) {
	for {
		cur := del.load()
		if cur.mark {
			return nil, false
		}
		if cur.flag {
			return cur.next, true
		}
		if del.succ.CompareAndSwap(cur, &link[K, V]{next: cur.next, mark: true}) {
			return nil, false
		}
		l.metrics.IncMarkCASRetry()
	}
}

// helpMarked makes one attempt to unlink the marked node del and clear the
// flag on prev. A failed attempt is left to later traversals.
func (l *List[K, V]) helpMarked(prev, del *Node[K, V]) {
	next := del.next()
	if beforeSpliceHook != nil {
		beforeSpliceHook(prev, del)
	}
	if _, ok := prev.casLink(del, false, true, next, false, false); ok {
		l.metrics.IncUnlink()
	}
}
