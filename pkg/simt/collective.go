package simt

// Number covers the element types the arithmetic collectives operate on.
type Number interface {
	~int | ~int32 | ~int64 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Reduce combines x across all active lanes of the subgroup and returns the
// result to every lane. combine must be associative; lanes are combined in
// ascending lane order.
func Reduce[T any](inv *Invocation, x T, combine func(a, b T) T) T {
	wg := inv.wg
	wg.scratch[inv.lane] = x
	wg.bar.wait()

	var acc T
	first := true
	for i := 0; i < wg.size; i++ {
		if !wg.bar.active[i] {
			continue
		}
		v := wg.scratch[i].(T)
		if first {
			acc, first = v, false
		} else {
			acc = combine(acc, v)
		}
	}

	wg.bar.wait()
	return acc
}

// Sum returns the subgroup-wide sum of x.
func Sum[T Number](inv *Invocation, x T) T {
	return Reduce(inv, x, func(a, b T) T { return a + b })
}

// Max returns the subgroup-wide maximum of x.
func Max[T Number](inv *Invocation, x T) T {
	return Reduce(inv, x, func(a, b T) T {
		if a > b {
			return a
		}
		return b
	})
}

// ExclusiveSum returns the sum of x over all active lanes with a lower lane
// index than the caller. The first active lane receives zero.
func ExclusiveSum[T Number](inv *Invocation, x T) T {
	wg := inv.wg
	wg.scratch[inv.lane] = x
	wg.bar.wait()

	var sum T
	for i := 0; i < inv.lane; i++ {
		if wg.bar.active[i] {
			sum += wg.scratch[i].(T)
		}
	}

	wg.bar.wait()
	return sum
}

// Elect returns true for exactly one active lane of the subgroup (the lowest
// one), false for the rest.
func Elect(inv *Invocation) bool {
	wg := inv.wg
	wg.bar.wait()

	leader := -1
	for i := 0; i < wg.size; i++ {
		if wg.bar.active[i] {
			leader = i
			break
		}
	}

	wg.bar.wait()
	return inv.lane == leader
}
