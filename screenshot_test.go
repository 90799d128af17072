package canopy

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"after-drag", "after-drag"},
		{"a b/c", "a_b_c"},
		{"v1.2", "v1.2"},
		{"../escape", ".._escape"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotWritesPNG(t *testing.T) {
	s := newTestScene()
	s.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	s.Mount(rectAt("r", 0, 0, 4, 4, filled(testRed.WithAlpha(0.5))))
	s.Screenshot("half red")

	s.Draw(NewRasterSurface(8, 8))
	if len(s.screenshotQueue) != 0 {
		t.Error("queue not flushed")
	}
	entries, err := os.ReadDir(s.ScreenshotDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries = %v, err = %v", entries, err)
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, "_half_red.png") {
		t.Errorf("file name = %q", name)
	}

	f, err := os.Open(filepath.Join(s.ScreenshotDir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded %T, want straight alpha", img)
	}
	if got := nrgba.NRGBAAt(1, 1); got.R < 250 || got.A < 126 || got.A > 129 {
		t.Errorf("pixel = %v, want un-premultiplied red at half alpha", got)
	}

	s.Draw(NewRasterSurface(8, 8))
	if entries, _ := os.ReadDir(s.ScreenshotDir); len(entries) != 1 {
		t.Error("screenshot written without a request")
	}
}

func TestScreenshotBadDirLogs(t *testing.T) {
	buf := captureLog(t)
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestScene()
	s.ScreenshotDir = filepath.Join(file, "sub")
	s.Screenshot("x")
	s.Draw(NewRasterSurface(4, 4))
	if !strings.Contains(buf.String(), "screenshot") {
		t.Errorf("log = %q", buf.String())
	}
	if len(s.screenshotQueue) != 0 {
		t.Error("failed request not dropped")
	}
}
