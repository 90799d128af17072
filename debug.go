package canopy

import (
	"fmt"
	"time"
)

// debugStats holds per-frame timing and token metrics.
// Only populated when the scene is in debug mode.
type debugStats struct {
	resolveTime time.Duration
	paintTime   time.Duration
	tokenCount  int
	resolutions int
	paintFaults int
}

// debugLog logs frame statistics when the scene is in debug mode.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug.Peek() {
		return
	}
	Logger.Info("frame",
		"frame", s.frame,
		"resolve", stats.resolveTime,
		"paint", stats.paintTime,
		"total", stats.resolveTime+stats.paintTime,
		"tokens", stats.tokenCount,
		"resolutions", stats.resolutions,
		"faults", stats.paintFaults,
	)
}

// debugCheckDisposed panics with a descriptive message when a token dropped
// by resolution is used. Only called in debug mode.
func debugCheckDisposed(t *Token, op string) {
	if t.Disposed() {
		panic(fmt.Sprintf("canopy debug: %s on disposed token %s (ID was %d)", op, t, t.ID))
	}
}

// debugCheckGroupDepth warns if groups nest deeper than the threshold.
const debugMaxGroupDepth = 32

func debugCheckGroupDepth(depth int, t *Token) {
	if depth > debugMaxGroupDepth {
		Logger.Warn("group nesting exceeds threshold",
			"depth", depth, "threshold", debugMaxGroupDepth, "token", t.String())
	}
}

// debugCheckTokenCount warns if a single tree resolves to more tokens than
// the threshold.
const debugMaxTokenCount = 1000

func debugCheckTokenCount(n int) {
	if n > debugMaxTokenCount {
		Logger.Warn("token tree exceeds threshold", "tokens", n, "threshold", debugMaxTokenCount)
	}
}
