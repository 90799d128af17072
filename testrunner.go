package canopy

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyScript is returned by LoadTestScript for a script without steps.
var ErrEmptyScript = errors.New("canopy: test script has no steps")

// scriptStep is one entry of a JSON test script. Which fields matter depends
// on the action:
//
//	{"action": "click", "at": {"x": 10, "y": 20}}
//	{"action": "drag", "from": {"x": 0, "y": 0}, "to": {"x": 50, "y": 0}, "frames": 10}
//	{"action": "wait", "frames": 30}
//	{"action": "clock", "clock": 2.5}
//	{"action": "origin", "to": {"x": 100, "y": 0}}
//	{"action": "debug", "enabled": true}
//	{"action": "screenshot", "label": "after-drag"}
type scriptStep struct {
	Action  string  `json:"action"`
	Label   string  `json:"label,omitempty"`
	At      Vec2    `json:"at"`
	From    Vec2    `json:"from"`
	To      Vec2    `json:"to"`
	Frames  int     `json:"frames,omitempty"`
	Clock   float64 `json:"clock,omitempty"`
	Enabled bool    `json:"enabled,omitempty"`
}

type testScript struct {
	Steps []scriptStep `json:"steps"`
}

// scriptActions maps each action name to what it does to the scene. A
// returned count makes the runner idle for that many extra updates.
var scriptActions = map[string]func(s *Scene, st scriptStep) (wait int){
	"screenshot": func(s *Scene, st scriptStep) int { s.Screenshot(st.Label); return 0 },
	"click":      func(s *Scene, st scriptStep) int { s.InjectClick(st.At.X, st.At.Y); return 0 },
	"press":      func(s *Scene, st scriptStep) int { s.InjectPress(st.At.X, st.At.Y); return 0 },
	"move":       func(s *Scene, st scriptStep) int { s.InjectMove(st.At.X, st.At.Y); return 0 },
	"release":    func(s *Scene, st scriptStep) int { s.InjectRelease(st.At.X, st.At.Y); return 0 },
	"drag": func(s *Scene, st scriptStep) int {
		s.InjectDrag(st.From.X, st.From.Y, st.To.X, st.To.Y, st.Frames)
		return 0
	},
	"wait": func(_ *Scene, st scriptStep) int {
		// The update that runs the step counts as the first frame.
		return max(st.Frames-1, 0)
	},
	"clock":  func(s *Scene, st scriptStep) int { s.SetClock(st.Clock); return 0 },
	"origin": func(s *Scene, st scriptStep) int { s.SetOrigin(st.To); return 0 },
	"debug":  func(s *Scene, st scriptStep) int { s.SetDebugMode(st.Enabled); return 0 },
}

// TestRunner plays a JSON script of injected input, clock changes and
// screenshots, one step per Scene.Update. Attach it with SetTestRunner.
type TestRunner struct {
	steps []scriptStep
	next  int
	idle  int
	done  bool
}

// LoadTestScript parses a JSON test script. Unknown actions are rejected
// here rather than skipped at run time.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: %w", ErrEmptyScript)
	}
	for i, st := range script.Steps {
		if _, ok := scriptActions[st.Action]; !ok {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches runner to the scene. While attached, Run ignores
// the real mouse.
func (s *Scene) SetTestRunner(runner *TestRunner) {
	s.testRunner = runner
}

// Done reports whether every step has run and its input has drained.
func (r *TestRunner) Done() bool {
	return r.done
}

// step runs at the start of Scene.Update. The runner holds back while
// injected input is still queued, so each step sees the effects of the last.
func (r *TestRunner) step(s *Scene) {
	switch {
	case r.done, s.PendingInput() > 0:
		return
	case r.idle > 0:
		r.idle--
		return
	case r.next == len(r.steps):
		r.done = true
		return
	}
	st := r.steps[r.next]
	r.next++
	r.idle = scriptActions[st.Action](s, st)
	if r.next == len(r.steps) && r.idle == 0 && s.PendingInput() == 0 {
		r.done = true
	}
}
