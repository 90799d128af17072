package canopy

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// statsOverlay displays the current FPS and TPS. Its image is refreshed
// every ~0.5 seconds with ebitenutil.DebugPrint.
type statsOverlay struct {
	img        *ebiten.Image
	lastUpdate float64
	dirty      bool
}

func newStatsOverlay() *statsOverlay {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	return &statsOverlay{img: ebiten.NewImage(100, 32), dirty: true}
}

func (o *statsOverlay) update(dt float64) {
	o.lastUpdate += dt
	if o.lastUpdate < 0.5 && !o.dirty {
		return
	}
	o.lastUpdate = 0
	o.dirty = false

	o.img.Clear()
	// Semi-transparent background for readability
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

func (o *statsOverlay) draw(screen *ebiten.Image) {
	screen.DrawImage(o.img, nil)
}
