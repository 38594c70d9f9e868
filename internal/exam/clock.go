package exam

import "time"

// Ticker is the countdown's time source. Abstracted so tests can drive
// ticks manually instead of waiting on the wall clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock produces tickers and timestamps for a session.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type realTicker struct {
	t *time.Ticker
}

func (rt realTicker) C() <-chan time.Time { return rt.t.C }
func (rt realTicker) Stop()               { rt.t.Stop() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
func (systemClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }
