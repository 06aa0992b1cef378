package stress

const defaultSeed = uint64(0xdeadbeefcafebabe)

// xorshift is a per-worker generator. It is not safe for concurrent use.
type xorshift struct {
	state uint64
}

func newXorshift(seed uint64) *xorshift {
	if seed == 0 {
		seed = defaultSeed
	}
	return &xorshift{state: seed}
}

func (r *xorshift) next() uint64 {
	x := r.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	r.state = x
	return x * 2685821657736338717
}

// intn returns a value in [0, n). n must be positive.
func (r *xorshift) intn(n int) int {
	return int(r.next() % uint64(n))
}

// workerSeed spreads the run seed over the workers.
func workerSeed(seed int64, worker int) uint64 {
	return uint64(seed) ^ (uint64(worker+1) * 0x9e3779b97f4a7c15)
}
