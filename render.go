package canopy

import (
	"fmt"
	"time"
)

// Draw paints one frame onto surf.
//
// The token tree is resolved first, so tokens that appear this frame have
// their frame callbacks registered. Frame callbacks then run, untracked,
// with the current clock. The surface
// is then cleared, or seeded with the previous frame when feedback is
// configured. Tokens paint in declaration order, each between a Save and a
// Restore; a token whose paint panics is logged and skipped, and the frame
// continues. In debug mode every token's debug overlay follows, in the same
// order. The background is painted last, behind everything.
//
// Every reactive value read while painting is tracked, so NeedsPaint reports
// whether a later Draw would differ.
func (s *Scene) Draw(surf Surface) {
	clock := s.clock.Peek()
	s.rt.Untrack(func() {
		resolveTokens(s.tree.Tokens())
		for _, cb := range append([]frameCallback(nil), s.frameCallbacks...) {
			cb.fn(clock)
		}
	})

	var stats debugStats
	s.faults = 0
	s.paintWatch.run(func() {
		s.paintFrame(surf, &stats)
	})
	s.painted = true
	s.paintedClock = clock
	s.frame++

	if s.cfg.Feedback != nil {
		s.prevFrame = surf.Snapshot()
	}
	s.flushScreenshots(surf)
	stats.paintFaults = s.faults
	s.debugLog(stats)
}

// resolveTokens resolves the child and clip trees of every group below
// tokens.
func resolveTokens(tokens []*Token) {
	for _, t := range tokens {
		if t.Group == nil {
			continue
		}
		resolveTokens(t.Group.ClipTokens())
		resolveTokens(t.Group.Tokens())
	}
}

func (s *Scene) paintFrame(surf Surface, stats *debugStats) {
	debug := s.debug.Get()
	size := surf.Size()
	full := Rect{Width: size.Width, Height: size.Height}

	var t0 time.Time
	if debug {
		t0 = time.Now()
	}
	tokens := s.tree.Tokens()
	if debug {
		stats.resolveTime = time.Since(t0)
		stats.tokenCount = len(tokens)
		stats.resolutions = s.tree.Resolutions()
		debugCheckTokenCount(len(tokens))
		t0 = time.Now()
	}

	surf.Save()
	s.paintFeedback(surf, full)
	surf.Restore()

	for _, t := range tokens {
		if debug {
			debugCheckDisposed(t, "paint")
		}
		s.paintToken(surf, t, t.Paint)
	}
	if debug {
		for _, t := range tokens {
			s.paintToken(surf, t, t.DebugPaint)
		}
	}

	if bg := s.cfg.Background; bg != nil {
		surf.Save()
		surf.SetComposite(CompositeDestinationOver)
		surf.FillRect(full, *bg)
		surf.Restore()
	}

	if debug {
		stats.paintTime = time.Since(t0)
	}
}

// paintFeedback prepares the surface for a new frame.
func (s *Scene) paintFeedback(surf Surface, full Rect) {
	fb := s.cfg.Feedback
	if fb == nil {
		surf.ClearRect(full)
		return
	}
	if fb.Paint != nil {
		fb.Paint(surf, s.prevFrame)
		return
	}
	surf.ClearRect(full)
	if s.prevFrame == nil {
		return
	}
	opacity := fb.Opacity
	if opacity == 0 {
		opacity = 1
	}
	surf.SetGlobalAlpha(opacity)
	surf.SetComposite(fb.Composite)
	b := s.prevFrame.Bounds()
	surf.DrawImage(s.prevFrame, TranslateMatrix(fb.Offset.X, fb.Offset.Y),
		Dimensions{Width: float64(b.Dx()), Height: float64(b.Dy())})
}

// paintToken calls fn between a Save and a Restore. A panic in fn is a paint
// fault: it is logged, the surface state is unwound to where it was, and
// false is returned.
func (s *Scene) paintToken(surf Surface, t *Token, fn func(Surface)) (ok bool) {
	if fn == nil {
		return true
	}
	depth := surf.Depth()
	surf.Save()
	defer func() {
		if r := recover(); r != nil {
			s.faults++
			Logger.Error("paint fault", "token", t.String(), "id", t.ID, "err", fmt.Sprint(r))
			ok = false
		}
		for surf.Depth() > depth {
			surf.Restore()
		}
	}()
	fn(surf)
	return true
}
