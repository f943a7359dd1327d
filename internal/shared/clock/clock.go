package clock

import "time"

// Clock supplies the ledger time for all end-time and expiry comparisons,
// injected so tests can drive it.
type Clock interface {
	Now() time.Time
}

// System is the wall-clock implementation of the engine's Clock port.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fake is a manually driven clock for tests.
type Fake struct {
	Current time.Time
}

func NewFake(start time.Time) *Fake { return &Fake{Current: start} }

func (f *Fake) Now() time.Time { return f.Current }

// Advance moves the fake clock forward.
func (f *Fake) Advance(d time.Duration) { f.Current = f.Current.Add(d) }
