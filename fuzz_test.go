package lflist

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fuzzOp struct {
	typ byte
	key int
	val int
}

type fuzzRecord struct {
	index int
	op    fuzzOp
	start time.Time
	end   time.Time

	// value is the value held by the returned node, if any.
	value int
	ok    bool
}

const (
	opInsert = iota
	opSearch
	opDelete
)

func FuzzListLinearizability(f *testing.F) {
	f.Add([]byte{0, 1, 1, 0, 2, 2})
	f.Add([]byte{1, 2, 3, 2, 2, 4})
	f.Add([]byte{2, 3, 5, 0, 3, 7})
	f.Add([]byte{0, 4, 1, 2, 4, 0, 0, 4, 9, 1, 4, 0})

	f.Fuzz(func(t *testing.T, input []byte) {
		const maxOps = 5
		ops := decodeFuzzOps(input, maxOps)
		if len(ops) == 0 {
			t.Skip()
		}

		l, err := New[int, int](func(a, b int) int { return a - b })
		if err != nil {
			t.Fatal(err)
		}
		records := make([]*fuzzRecord, len(ops))

		var wg sync.WaitGroup
		wg.Add(len(ops))
		for i, op := range ops {
			go func() {
				defer wg.Done()
				rec := &fuzzRecord{index: i, op: op}
				rec.start = time.Now()
				var n *Node[int, int]
				switch op.typ {
				case opInsert:
					n, rec.ok = l.Insert(op.key, op.val)
				case opSearch:
					n, rec.ok = l.Search(op.key)
				case opDelete:
					n, rec.ok = l.Delete(op.key)
				}
				if n != nil {
					rec.value = n.Value()
				}
				rec.end = time.Now()
				records[i] = rec
			}()
		}
		wg.Wait()

		if !checkLinearizable(records) {
			t.Fatalf("non-linearizable history: %v", summarizeRecords(records))
		}
		if err := l.Check(); err != nil {
			t.Fatal(err)
		}
	})
}

func decodeFuzzOps(input []byte, maxOps int) []fuzzOp {
	if maxOps <= 0 {
		return nil
	}
	ops := make([]fuzzOp, 0, maxOps)
	for i := 0; i+2 < len(input) && len(ops) < maxOps; i += 3 {
		typ := input[i] % 3
		key := int(input[i+1] % 8)
		val := int(int8(input[i+2]))
		ops = append(ops, fuzzOp{typ: typ, key: key, val: val})
	}
	return ops
}

// checkLinearizable looks for an order of the records that respects
// real-time precedence and in which every result matches a sequential list.
// The model is updated as records are placed, so inconsistent prefixes are
// abandoned early.
func checkLinearizable(records []*fuzzRecord) bool {
	n := len(records)

	// returnedBefore[j] has bit i set when records[i] returned before
	// records[j] was called.
	returnedBefore := make([]uint32, n)
	for j, later := range records {
		for i, earlier := range records {
			if i != j && !earlier.end.After(later.start) {
				returnedBefore[j] |= 1 << i
			}
		}
	}

	all := uint32(1)<<n - 1
	model := make(map[int]int)

	var place func(placed uint32) bool
	place = func(placed uint32) bool {
		if placed == all {
			return true
		}
		for i, rec := range records {
			bit := uint32(1) << i
			if placed&bit != 0 || returnedBefore[i]&^placed != 0 {
				continue
			}

			value, present := model[rec.op.key]
			if !applyToModel(model, rec) {
				continue
			}
			if place(placed | bit) {
				return true
			}
			if present {
				model[rec.op.key] = value
			} else {
				delete(model, rec.op.key)
			}
		}
		return false
	}

	return place(0)
}

// applyToModel checks rec against a sequential list holding model and, if
// it is consistent, applies it. model is untouched when it returns false.
func applyToModel(model map[int]int, rec *fuzzRecord) bool {
	current, present := model[rec.op.key]
	switch rec.op.typ {
	case opInsert:
		// Duplicates are rejected and report the existing value.
		if rec.ok == present {
			return false
		}
		if present {
			return rec.value == current
		}
		if rec.value != rec.op.val {
			return false
		}
		model[rec.op.key] = rec.op.val
	case opSearch:
		if rec.ok != present {
			return false
		}
		if present {
			return rec.value == current
		}
	case opDelete:
		if rec.ok != present {
			return false
		}
		if present {
			if rec.value != current {
				return false
			}
			delete(model, rec.op.key)
		}
	}
	return true
}

func summarizeRecords(records []*fuzzRecord) string {
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		parts = append(parts, fmt.Sprintf("{%d %d %d -> %d %t}", rec.op.typ, rec.op.key, rec.op.val, rec.value, rec.ok))
	}
	return fmt.Sprintf("%v", parts)
}

func TestCheckLinearizable(t *testing.T) {
	at := func(ms int) time.Time { return time.Unix(0, int64(ms)*int64(time.Millisecond)) }
	rec := func(typ byte, key, val, value int, ok bool, start, end int) *fuzzRecord {
		return &fuzzRecord{op: fuzzOp{typ: typ, key: key, val: val}, value: value, ok: ok, start: at(start), end: at(end)}
	}

	t.Run("search after completed insert must see it", func(t *testing.T) {
		history := []*fuzzRecord{
			rec(opInsert, 1, 5, 5, true, 0, 1),
			rec(opSearch, 1, 0, 0, false, 2, 3),
		}
		if checkLinearizable(history) {
			t.Fatal("stale search accepted")
		}
	})

	t.Run("overlapping search may miss the insert", func(t *testing.T) {
		history := []*fuzzRecord{
			rec(opInsert, 1, 5, 5, true, 0, 3),
			rec(opSearch, 1, 0, 0, false, 1, 2),
		}
		if !checkLinearizable(history) {
			t.Fatal("valid history rejected")
		}
	})

	t.Run("two deletes of one key cannot both win", func(t *testing.T) {
		history := []*fuzzRecord{
			rec(opInsert, 1, 5, 5, true, 0, 1),
			rec(opDelete, 1, 0, 5, true, 2, 4),
			rec(opDelete, 1, 0, 5, true, 2, 4),
		}
		if checkLinearizable(history) {
			t.Fatal("double delete accepted")
		}
	})

	t.Run("duplicate insert reports the first value", func(t *testing.T) {
		history := []*fuzzRecord{
			rec(opInsert, 2, 7, 7, true, 0, 4),
			rec(opInsert, 2, 9, 7, false, 1, 3),
		}
		if !checkLinearizable(history) {
			t.Fatal("valid history rejected")
		}
	})
}
