package ticket

import "time"

// Timer is a cancellable delayed task handle.
type Timer interface {
	// Stop cancels the pending fire; false means it already fired or stopped.
	Stop() bool
}

// Clock schedules delayed work. Production uses the wall clock; tests supply
// a virtual clock and advance it deterministically.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// RealClock returns the wall-clock implementation.
func RealClock() Clock { return realClock{} }
