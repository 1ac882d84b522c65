package counter

import "time"

// Clock abstracts wall time and timer arming so tests can drive the
// debounce window with virtual time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is an armed flush deadline. Stop reports whether the timer was
// still pending.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock returns the wall-clock implementation.
func SystemClock() Clock { return systemClock{} }
