package purge

import (
	"iter"

	"housekeeper/internal/core/apperror"
)

// Chunking defaults.
const (
	DefaultWindowSize          = 5000
	DefaultCheckpointThreshold = 100000
)

// ChunkPolicy controls how an id range is split into mutation windows and
// how often the surrounding transaction is committed.
type ChunkPolicy struct {
	WindowSize          int64
	CheckpointThreshold int64
}

// DefaultChunkPolicy returns the standard 5000/100000 policy.
func DefaultChunkPolicy() ChunkPolicy {
	return ChunkPolicy{
		WindowSize:          DefaultWindowSize,
		CheckpointThreshold: DefaultCheckpointThreshold,
	}
}

// Validate checks both values are positive.
func (p ChunkPolicy) Validate() error {
	if p.WindowSize <= 0 {
		return apperror.NewInvalidParameter("windowSize", p.WindowSize, "must be positive")
	}
	if p.CheckpointThreshold <= 0 {
		return apperror.NewInvalidParameter("checkpointThreshold", p.CheckpointThreshold, "must be positive")
	}
	return nil
}

// Window is an inclusive id range [Lo, Hi]. Checkpoint asks the caller to
// commit after processing it.
type Window struct {
	Lo, Hi     int64
	Checkpoint bool
}

// Windows yields [lo, min(maxID, lo+W)] for lo = minID, minID+W, ... while
// lo <= maxID. Consecutive windows share their boundary id.
//
// A window is flagged for checkpoint when the ids covered since the last
// checkpoint exceed the threshold. The final window is never flagged.
func (p ChunkPolicy) Windows(minID, maxID int64) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		if minID > maxID {
			return
		}
		w := p.WindowSize
		since := minID
		for lo := minID; ; lo += w {
			// lo > maxID-w is lo+w > maxID without overflow.
			last := lo > maxID-w
			hi := maxID
			if !last {
				hi = lo + w
			}

			win := Window{Lo: lo, Hi: hi}
			if !last && hi-since+1 > p.CheckpointThreshold {
				win.Checkpoint = true
				since = lo + w
			}
			if !yield(win) || last {
				return
			}
		}
	}
}
