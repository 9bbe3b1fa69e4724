package pipeline

import "sync/atomic"

// atomicInt is a small wrapper so Stats fields can be copied by value
// for reporting (via Load) while still being updated concurrently by
// worker goroutines (via Add).
type atomicInt struct {
	v atomic.Int64
}

func (a *atomicInt) Add(delta int64) {
	a.v.Add(delta)
}

func (a *atomicInt) Load() int64 {
	return a.v.Load()
}
