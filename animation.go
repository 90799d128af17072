package canopy

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 channels of a signal simultaneously.
// Create one via the convenience constructors (TweenFloat, TweenVec2,
// TweenColor) and either call Update(dt) each frame or hand it to
// Context.Animate. Every update writes the signal, so whatever read it is
// recomputed and repainted.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	vals   [4]float64
	write  func(v [4]float64)
	stop   func() bool
	Done   bool
}

// Update advances all tweens by dt seconds and writes the new value. If the
// group was bound to an owner that has since been disposed, Done is set and
// no write occurs.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.stop != nil && g.stop() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.vals[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.write(g.vals)
}

// TweenFloat creates a TweenGroup that animates sig to the target value over
// duration seconds using the easing function.
func TweenFloat(sig *Signal[float64], to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1}
	g.tweens[0] = gween.New(float32(sig.Peek()), float32(to), duration, fn)
	g.write = func(v [4]float64) { sig.Set(v[0]) }
	return g
}

// TweenVec2 creates a TweenGroup that animates both components of sig.
func TweenVec2(sig *Signal[Vec2], to Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := sig.Peek()
	g := &TweenGroup{count: 2}
	g.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	g.write = func(v [4]float64) { sig.Set(Vec2{X: v[0], Y: v[1]}) }
	return g
}

// TweenColor creates a TweenGroup that animates all four components of sig.
func TweenColor(sig *Signal[Color], to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := sig.Peek()
	g := &TweenGroup{count: 4}
	g.tweens[0] = gween.New(float32(from.R), float32(to.R), duration, fn)
	g.tweens[1] = gween.New(float32(from.G), float32(to.G), duration, fn)
	g.tweens[2] = gween.New(float32(from.B), float32(to.B), duration, fn)
	g.tweens[3] = gween.New(float32(from.A), float32(to.A), duration, fn)
	g.write = func(v [4]float64) { sig.Set(Color{R: v[0], G: v[1], B: v[2], A: v[3]}) }
	return g
}

// Animate binds g to the context's owner and registers it with the scene,
// which advances it on every Scene.Update until it finishes or the owner is
// disposed.
func (c Context) Animate(g *TweenGroup) *TweenGroup {
	o := c.owner
	g.stop = o.Disposed
	c.scene.tweens = append(c.scene.tweens, g)
	return g
}
