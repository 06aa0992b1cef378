package lflist

import "fmt"

// Check walks the list from the head sentinel and verifies that keys are
// strictly ascending, that the walk ends at the tail sentinel and that no
// reachable link is marked or flagged.
//
// The result is only meaningful while no other goroutine mutates the list.
func (l *List[K, V]) Check() error {
	prev := l.head
	for {
		pl := prev.load()
		if pl.mark {
			return fmt.Errorf("%w: %v", ErrMarkedNode, prev.key)
		}
		if pl.flag {
			return fmt.Errorf("%w: %v -> %v", ErrFlaggedLink, prev.key, pl.next.key)
		}
		if prev == l.tail {
			return nil
		}

		next := pl.next
		if next == nil {
			return fmt.Errorf("%w: nil successor after %v", ErrBrokenChain, prev.key)
		}
		if compareKeys(l.cmp, prev.key, next.key) >= 0 {
			return fmt.Errorf("%w: %v before %v", ErrUnsorted, prev.key, next.key)
		}
		prev = next
	}
}
