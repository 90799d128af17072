package canopy

import (
	"image"
	"image/color"
	"testing"
)

// --- nextPowerOfTwo ---

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		input, want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{5, 8},
		{128, 128},
		{129, 256},
		{1000, 1024},
	}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.input); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

// --- Pool ---

func TestLayerPoolAcquireReturnsPow2(t *testing.T) {
	var pool layerPool
	img := pool.acquire(image.Pt(100, 50))
	defer pool.release(img)

	b := img.Bounds()
	if b.Dx() != 128 || b.Dy() != 64 {
		t.Errorf("size = %dx%d, want 128x64", b.Dx(), b.Dy())
	}
	if pool.live != 1 {
		t.Errorf("live = %d", pool.live)
	}
}

func TestLayerPoolReuse(t *testing.T) {
	var pool layerPool
	a := pool.acquire(image.Pt(64, 64))
	pool.release(a)
	b := pool.acquire(image.Pt(60, 64))
	if a != b {
		t.Error("expected the released layer back")
	}
	c := pool.acquire(image.Pt(64, 64))
	if c == b {
		t.Error("live layer handed out twice")
	}
	pool.release(b)
	pool.release(c)
	pool.release(nil)
	if pool.live != 0 {
		t.Errorf("live = %d after releasing everything", pool.live)
	}
	pool.dispose()
	if len(pool.free) != 0 {
		t.Error("dispose kept pooled layers")
	}
}

// --- Ebiten surface bookkeeping ---

func TestEbitenSurfaceClipLayersReturnToPool(t *testing.T) {
	var pool layerPool
	screen := pool.acquire(image.Pt(32, 32))
	s := NewEbitenSurface(screen)
	defer s.Dispose()

	s.Save()
	s.Clip(rectPath(0, 0, 8, 8))
	s.Save()
	s.Clip(rectPath(2, 2, 4, 4))
	if s.pool.live == 0 {
		t.Fatal("clip did not open a layer")
	}
	s.Fill(rectPath(0, 0, 32, 32), testRed)
	s.Restore()
	s.Restore()
	if s.pool.live != 0 || s.Depth() != 0 {
		t.Errorf("live layers = %d depth = %d after Restore", s.pool.live, s.Depth())
	}
	if s.Size() != (Dimensions{32, 32}) {
		t.Errorf("size = %v", s.Size())
	}
}

func TestEbitenSurfaceReleasesUndrawnImages(t *testing.T) {
	var pool layerPool
	screen := pool.acquire(image.Pt(32, 32))
	s := NewEbitenSurface(screen)
	defer s.Dispose()
	img := solidImage(4, 4, color.RGBA{0, 0, 255, 255})
	size := Dimensions{Width: 4, Height: 4}

	s.DrawImage(img, IdentityMatrix, size)
	if len(s.images) != 1 {
		t.Fatalf("cached = %d, want 1", len(s.images))
	}
	s.Reset(screen)
	s.DrawImage(img, IdentityMatrix, size)
	s.Reset(screen)
	if len(s.images) != 1 {
		t.Fatalf("image drawn every frame evicted")
	}
	s.Reset(screen)
	if len(s.images) != 0 {
		t.Errorf("cached = %d after a frame without drawing, want 0", len(s.images))
	}

	s.DrawImage(img, IdentityMatrix, size)
	s.ReleaseImage(img)
	if len(s.images) != 0 {
		t.Errorf("ReleaseImage kept the upload")
	}
}

func TestToGeoM(t *testing.T) {
	m := TranslateMatrix(3, 4).Multiply(RotateMatrix(0.5))
	g := toGeoM(m)
	x, y := g.Apply(1, 2)
	want := m.Apply(Vec2{1, 2})
	assertNear(t, "x", x, want.X)
	assertNear(t, "y", y, want.Y)
}
