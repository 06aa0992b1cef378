package lflist

import (
	"cmp"
	"errors"
	"fmt"
)

// Compare is a total order over keys. It returns a negative number when
// a < b, zero when a == b and a positive number when a > b, following the
// semantics of cmp.Compare.
type Compare[K any] func(a, b K) int

type bound uint8

const (
	boundMin bound = iota
	boundValue
	boundMax
)

// Key is a key of the list extended with the two sentinel extremes. The
// head sentinel holds MinKey and the tail sentinel holds MaxKey, so every
// comparison site can treat sentinels and real keys uniformly.
type Key[K any] struct {
	bound bound
	value K
}

// MinKey returns the key that orders before every other key.
func MinKey[K any]() Key[K] {
	return Key[K]{bound: boundMin}
}

// MaxKey returns the key that orders after every other key.
func MaxKey[K any]() Key[K] {
	return Key[K]{bound: boundMax}
}

// KeyOf wraps a real key.
func KeyOf[K any](k K) Key[K] {
	return Key[K]{bound: boundValue, value: k}
}

// IsMin reports whether k is the minimal sentinel.
func (k Key[K]) IsMin() bool { return k.bound == boundMin }

// IsMax reports whether k is the maximal sentinel.
func (k Key[K]) IsMax() bool { return k.bound == boundMax }

// Value returns the wrapped key. The boolean is false for sentinels.
func (k Key[K]) Value() (K, bool) {
	if k.bound != boundValue {
		var zero K
		return zero, false
	}
	return k.value, true
}

func (k Key[K]) String() string {
	switch k.bound {
	case boundMin:
		return "-inf"
	case boundMax:
		return "+inf"
	}
	return fmt.Sprint(k.value)
}

// compareKeys orders keys structurally: Min < Value(_) < Max.
func compareKeys[K any](c Compare[K], a, b Key[K]) int {
	if a.bound != b.bound {
		return cmp.Compare(a.bound, b.bound)
	}
	if a.bound != boundValue {
		return 0
	}
	return c(a.value, b.value)
}

// CmpType must be implemented by key types that provide their own ordering
// to Ordered.
type CmpType interface {
	Compare(other any) int
}

// ErrUnsupportedType is returned when a key type has neither a builtin order
// nor a CmpType implementation.
var ErrUnsupportedType = errors.New("unsupported type: type does not implement CmpType interface")

// unsupportedCode is the result of Ordered for keys it cannot compare.
const unsupportedCode = -2

// Ordered compares the builtin ordered types and any type implementing
// CmpType. Unsupported types yield a sentinel code outside {-1, 0, 1}; use
// ValidateCmpType before relying on it.
func Ordered[K any](a, b K) int {
	switch x := any(a).(type) {
	case int:
		return compareAs(x, b)
	case int8:
		return compareAs(x, b)
	case int16:
		return compareAs(x, b)
	case int32:
		return compareAs(x, b)
	case int64:
		return compareAs(x, b)
	case uint:
		return compareAs(x, b)
	case uint8:
		return compareAs(x, b)
	case uint16:
		return compareAs(x, b)
	case uint32:
		return compareAs(x, b)
	case uint64:
		return compareAs(x, b)
	case uintptr:
		return compareAs(x, b)
	case float32:
		return compareAs(x, b)
	case float64:
		return compareAs(x, b)
	case string:
		return compareAs(x, b)
	case CmpType:
		return x.Compare(b)
	}
	return unsupportedCode
}

// compareAs compares x with y, which has x's dynamic type.
func compareAs[T cmp.Ordered](x T, y any) int {
	return cmp.Compare(x, y.(T))
}

// ValidateCmpType verifies that K can be ordered by Ordered. It returns
// ErrUnsupportedType otherwise.
func ValidateCmpType[K any]() error {
	var zero K
	if _, ok := any(zero).(CmpType); ok {
		return nil
	}
	if Ordered(zero, zero) == unsupportedCode {
		return ErrUnsupportedType
	}
	return nil
}
