package canopy

import (
	"image"
	"math/bits"

	"github.com/hajimehoshi/ebiten/v2"
)

// layerPool recycles the offscreen images that clip layers render into.
// Each clip opens an image and a mask the size of the screen; sizes are
// rounded up to powers of two so a resized window keeps hitting the same
// buckets.
type layerPool struct {
	free map[image.Point][]*ebiten.Image
	// live counts images handed out and not yet released.
	live int
}

// acquire returns a cleared layer covering at least size.
func (p *layerPool) acquire(size image.Point) *ebiten.Image {
	key := image.Pt(nextPowerOfTwo(size.X), nextPowerOfTwo(size.Y))
	p.live++
	if free := p.free[key]; len(free) > 0 {
		img := free[len(free)-1]
		p.free[key] = free[:len(free)-1]
		img.Clear()
		return img
	}
	return ebiten.NewImageWithOptions(image.Rectangle{Max: key}, &ebiten.NewImageOptions{Unmanaged: true})
}

// release hands a layer back once its clip is restored.
func (p *layerPool) release(img *ebiten.Image) {
	if img == nil {
		return
	}
	if p.free == nil {
		p.free = make(map[image.Point][]*ebiten.Image)
	}
	key := img.Bounds().Size()
	p.free[key] = append(p.free[key], img)
	p.live--
}

func (p *layerPool) dispose() {
	for key, free := range p.free {
		for _, img := range free {
			img.Deallocate()
		}
		delete(p.free, key)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
