package canopy

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
)

func newTestScene() *Scene {
	return NewScene(SceneConfig{})
}

// leaf declares a token without capabilities, counting cleanups in *dropped.
func leaf(name string, dropped *[]string) Child {
	return Element(func(ctx Context) (*Token, error) {
		if dropped != nil {
			ctx.OnCleanup(func() { *dropped = append(*dropped, name) })
		}
		return &Token{ID: nextTokenID(), Name: name}, nil
	})
}

func tokenNames(tokens []*Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Name
	}
	return out
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { Logger = prev })
	return &buf
}

func TestTokenTreeDeclarationOrder(t *testing.T) {
	s := newTestScene()
	tree := NewTokenTree(s.Context(),
		leaf("a", nil),
		Fragment(leaf("b", nil), Fragment(leaf("c", nil))),
		leaf("d", nil),
	)
	want := []string{"a", "b", "c", "d"}
	if got := tokenNames(tree.Tokens()); !slices.Equal(got, want) {
		t.Errorf("tokens = %v, want %v", got, want)
	}
	if tree.Len() != 4 {
		t.Errorf("Len = %d, want 4", tree.Len())
	}
}

func TestWhenTogglesAndDisposes(t *testing.T) {
	s := newTestScene()
	show := NewSignal(s.Runtime(), false)
	var dropped []string
	tree := NewTokenTree(s.Context(),
		leaf("first", nil),
		When(show.Get, leaf("maybe", &dropped)),
		leaf("last", nil),
	)

	if got := tokenNames(tree.Tokens()); !slices.Equal(got, []string{"first", "last"}) {
		t.Fatalf("hidden: %v", got)
	}

	show.Set(true)
	tokens := tree.Tokens()
	if got := tokenNames(tokens); !slices.Equal(got, []string{"first", "maybe", "last"}) {
		t.Fatalf("shown: %v", got)
	}
	maybe := tokens[1]

	show.Set(false)
	if got := tokenNames(tree.Tokens()); !slices.Equal(got, []string{"first", "last"}) {
		t.Fatalf("hidden again: %v", got)
	}
	if !slices.Equal(dropped, []string{"maybe"}) {
		t.Errorf("dropped = %v, want [maybe]", dropped)
	}
	if !maybe.Disposed() {
		t.Error("dropped token not disposed")
	}
}

func TestEitherSwitchesBranches(t *testing.T) {
	s := newTestScene()
	flag := NewSignal(s.Runtime(), true)
	var dropped []string
	tree := NewTokenTree(s.Context(), Either(flag.Get, leaf("yes", &dropped), leaf("no", &dropped)))

	if got := tokenNames(tree.Tokens()); !slices.Equal(got, []string{"yes"}) {
		t.Fatalf("then: %v", got)
	}
	flag.Set(false)
	if got := tokenNames(tree.Tokens()); !slices.Equal(got, []string{"no"}) {
		t.Fatalf("else: %v", got)
	}
	if !slices.Equal(dropped, []string{"yes"}) {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestTokenTreeResolvesOncePerChange(t *testing.T) {
	s := newTestScene()
	show := NewSignal(s.Runtime(), true)
	tree := NewTokenTree(s.Context(), When(show.Get, leaf("x", nil)))

	tree.Tokens()
	tree.Tokens()
	if tree.Resolutions() != 1 {
		t.Fatalf("resolutions = %d, want 1", tree.Resolutions())
	}
	show.Set(false)
	show.Set(true)
	show.Set(false)
	tree.Tokens()
	tree.Tokens()
	if tree.Resolutions() != 2 {
		t.Errorf("resolutions = %d, want 2", tree.Resolutions())
	}
}

func TestEachKeyedReconcile(t *testing.T) {
	s := newTestScene()
	items := NewSignalFunc(s.Runtime(), []string{"a", "b", "c"}, nil)
	var dropped []string
	built := 0
	tree := NewTokenTree(s.Context(), Each(items.Get,
		func(k string) string { return k },
		func(k func() string) Child {
			built++
			return leaf(k(), &dropped)
		},
	))

	first := tree.Tokens()
	if got := tokenNames(first); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("initial: %v", got)
	}

	items.Set([]string{"c", "a", "d"})
	next := tree.Tokens()
	if got := tokenNames(next); !slices.Equal(got, []string{"c", "a", "d"}) {
		t.Fatalf("reordered: %v", got)
	}
	if next[0] != first[2] || next[1] != first[0] {
		t.Error("surviving keys did not keep their tokens")
	}
	if built != 4 {
		t.Errorf("built = %d, want 4", built)
	}
	if !slices.Equal(dropped, []string{"b"}) {
		t.Errorf("dropped = %v, want [b]", dropped)
	}
}

func TestEachDuplicateKeyPanics(t *testing.T) {
	s := newTestScene()
	items := NewSignalFunc(s.Runtime(), []int{1, 2}, nil)
	built := 0
	tree := NewTokenTree(s.Context(), Each(items.Get,
		func(v int) int { return v },
		func(v func() int) Child {
			built++
			return leaf("x", nil)
		},
	))
	tree.Tokens()

	items.Set([]int{3, 1, 1})
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(string), "duplicate key") {
			t.Errorf("recover = %v, want duplicate key panic", r)
		}
		if built != 2 {
			t.Errorf("built = %d, want 2: nothing mounts from a list with duplicate keys", built)
		}
	}()
	tree.Tokens()
}

type eachItem struct {
	ID string
	X  float64
}

func TestEachUpdatesItemUnderSurvivingKey(t *testing.T) {
	s := newTestScene()
	items := NewSignalFunc(s.Runtime(), []eachItem{{ID: "a", X: 0}}, nil)
	built := 0
	s.Mount(Each(items.Get,
		func(it eachItem) string { return it.ID },
		func(it func() eachItem) Child {
			built++
			return Rectangle(func() RectangleProps {
				return RectangleProps{
					ShapeProps: ShapeProps{Name: it().ID, Style: Style{Position: Of(Vec2{it().X, 0})}},
					Dimensions: Dimensions{Width: 10, Height: 10},
				}
			})
		},
	))
	first := s.Tokens()[0]

	items.Set([]eachItem{{ID: "a", X: 100}})
	tok := s.Tokens()[0]
	if tok != first || built != 1 {
		t.Fatalf("surviving key rebuilt its token (built = %d)", built)
	}
	want := Rect{X: 100, Width: 10, Height: 10}
	if got := tok.Shape.Path().Bounds(); got != want {
		t.Errorf("bounds = %+v, want %+v", got, want)
	}
	if e := s.Dispatch(EventMouseDown, Vec2{105, 5}); e.Target() != tok {
		t.Errorf("target = %v, want the moved token", e.Target())
	}
}

func TestElementNilTokenDisposesOwner(t *testing.T) {
	s := newTestScene()
	cleaned := false
	tree := NewTokenTree(s.Context(), Element(func(ctx Context) (*Token, error) {
		ctx.OnCleanup(func() { cleaned = true })
		return nil, nil
	}))
	if tree.Len() != 0 {
		t.Errorf("len = %d, want 0", tree.Len())
	}
	if !cleaned {
		t.Error("owner of an element without a token not disposed")
	}
}

func TestFragmentNilChildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil child")
		}
	}()
	Fragment(leaf("a", nil), nil)
}

func TestElementBuildErrorContributesNothing(t *testing.T) {
	buf := captureLog(t)
	s := newTestScene()
	cleaned := false
	tree := NewTokenTree(s.Context(),
		leaf("ok", nil),
		Element(func(ctx Context) (*Token, error) {
			ctx.OnCleanup(func() { cleaned = true })
			return nil, errors.New("boom")
		}),
	)
	if got := tokenNames(tree.Tokens()); !slices.Equal(got, []string{"ok"}) {
		t.Errorf("tokens = %v", got)
	}
	if !cleaned {
		t.Error("failed element's owner not disposed")
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("log = %q, want build error", buf.String())
	}
}

func TestTokenTreeDispose(t *testing.T) {
	s := newTestScene()
	var dropped []string
	tree := NewTokenTree(s.Context(), leaf("a", &dropped), leaf("b", &dropped))
	tokens := tree.Tokens()
	tree.Dispose()
	if len(dropped) != 2 {
		t.Errorf("dropped = %v", dropped)
	}
	for _, tok := range tokens {
		if !tok.Disposed() {
			t.Errorf("%s not disposed", tok)
		}
	}
}

func TestNewTokenTreeRequiresScene(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero context")
		}
	}()
	NewTokenTree(Context{})
}

func TestSceneMountReplacesContent(t *testing.T) {
	s := newTestScene()
	var dropped []string
	s.Mount(leaf("old", &dropped))
	s.Mount(leaf("new", nil))
	if got := tokenNames(s.Tokens()); !slices.Equal(got, []string{"new"}) {
		t.Errorf("tokens = %v", got)
	}
	if !slices.Equal(dropped, []string{"old"}) {
		t.Errorf("dropped = %v", dropped)
	}
}
