package purge

import "time"

// Observer receives run progress. Implementations must be cheap; they are
// called inline from the purge loop.
type Observer interface {
	TargetDone(target TargetID, mode Mode, affected int64)
	WindowDone(target TargetID, affected int64)
	Checkpointed(target TargetID)
	RunDone(mode Mode, elapsed time.Duration, err error)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) TargetDone(TargetID, Mode, int64)   {}
func (NopObserver) WindowDone(TargetID, int64)         {}
func (NopObserver) Checkpointed(TargetID)              {}
func (NopObserver) RunDone(Mode, time.Duration, error) {}
