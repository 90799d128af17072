package canopy

import "fmt"

// Child is one declared entry of a token tree: an element, a conditional
// slot, a fragment or a keyed list. Children are descriptions; they produce
// tokens only when mounted into a TokenTree.
type Child interface {
	mount(ctx Context) slot
}

// slot is a mounted Child. tokens is a tracked read: calling it inside a
// memo subscribes the memo to whatever structural inputs the slot depends on.
type slot interface {
	tokens() []*Token
}

// --- Element ---

type elementChild struct {
	build func(ctx Context) (*Token, error)
}

// Element declares a single token built by build. The build function runs
// once per mount, untracked, with a context whose owner is disposed when the
// element is dropped. A build error is logged and the element contributes
// no token.
func Element(build func(ctx Context) (*Token, error)) Child {
	if build == nil {
		panic("canopy: Element requires a build function")
	}
	return elementChild{build: build}
}

type elementSlot struct {
	tok []*Token
}

func (e elementChild) mount(ctx Context) slot {
	owner := ctx.owner.NewChild()
	var (
		tok *Token
		err error
	)
	ctx.Runtime().Untrack(func() {
		tok, err = e.build(ctx.withOwner(owner))
	})
	if err != nil {
		Logger.Error("token build failed", "err", err)
		owner.Dispose()
		return elementSlot{}
	}
	if tok == nil {
		owner.Dispose()
		return elementSlot{}
	}
	tok.owner = owner
	return elementSlot{tok: []*Token{tok}}
}

func (e elementSlot) tokens() []*Token {
	return e.tok
}

// --- Conditional slots ---

type eitherChild struct {
	cond      func() bool
	then, els Child
}

// When declares child only while cond reports true. While cond is false the
// slot contributes nothing.
func When(cond func() bool, child Child) Child {
	return Either(cond, child, nil)
}

// Either declares then while cond reports true and els otherwise. Either
// branch may be nil. Switching branches disposes the tokens of the old one.
func Either(cond func() bool, then, els Child) Child {
	if cond == nil {
		panic("canopy: conditional slot requires a condition")
	}
	return eitherChild{cond: cond, then: then, els: els}
}

type eitherSlot struct {
	memo *Memo[[]*Token]
}

func (e eitherChild) mount(ctx Context) slot {
	var (
		branch = -1
		owner  *Owner
		inner  slot
	)
	memo := NewMemo(ctx.owner, func() []*Token {
		next := 0
		if e.cond() {
			next = 1
		}
		if next != branch {
			branch = next
			if owner != nil {
				owner.Dispose()
			}
			owner, inner = nil, nil
			child := e.els
			if next == 1 {
				child = e.then
			}
			if child != nil {
				owner = ctx.owner.NewChild()
				ctx.Runtime().Untrack(func() {
					inner = child.mount(ctx.withOwner(owner))
				})
			}
		}
		if inner == nil {
			return nil
		}
		return inner.tokens()
	})
	return eitherSlot{memo: memo}
}

func (e eitherSlot) tokens() []*Token {
	return e.memo.Get()
}

// --- Fragment ---

type fragmentChild []Child

// Fragment groups children into one slot, in declaration order.
func Fragment(children ...Child) Child {
	for i, c := range children {
		if c == nil {
			panic(fmt.Sprintf("canopy: nil child at index %d", i))
		}
	}
	return fragmentChild(children)
}

type fragmentSlot []slot

func (f fragmentChild) mount(ctx Context) slot {
	out := make(fragmentSlot, len(f))
	for i, c := range f {
		out[i] = c.mount(ctx)
	}
	return out
}

func (f fragmentSlot) tokens() []*Token {
	if len(f) == 1 {
		return f[0].tokens()
	}
	var out []*Token
	for _, s := range f {
		out = append(out, s.tokens()...)
	}
	return out
}

// --- Keyed list ---

type eachChild[T any, K comparable] struct {
	list   func() []T
	key    func(T) K
	render func(item func() T) Child
}

// Each declares one child per list item. Items are matched across changes
// by key: an item whose key survives keeps its tokens, new keys are
// rendered, and dropped keys are disposed. render receives a tracked
// accessor for the item, so data that changes under a surviving key
// reaches the tokens that read it. Duplicate keys panic before anything is
// mounted.
func Each[T any, K comparable](list func() []T, key func(T) K, render func(item func() T) Child) Child {
	if list == nil || key == nil || render == nil {
		panic("canopy: Each requires list, key and render functions")
	}
	return eachChild[T, K]{list: list, key: key, render: render}
}

type eachEntry[T any] struct {
	owner *Owner
	item  *Signal[T]
	slot  slot
}

type eachSlot struct {
	memo *Memo[[]*Token]
}

func (e eachChild[T, K]) mount(ctx Context) slot {
	entries := make(map[K]*eachEntry[T])
	var order []*eachEntry[T]
	memo := NewMemo(ctx.owner, func() []*Token {
		items := e.list()
		keys := make([]K, len(items))
		seen := make(map[K]struct{}, len(items))
		for i, item := range items {
			k := e.key(item)
			if _, dup := seen[k]; dup {
				panic(fmt.Sprintf("canopy: duplicate key %v in Each", k))
			}
			seen[k] = struct{}{}
			keys[i] = k
		}

		next := make(map[K]*eachEntry[T], len(items))
		order = order[:0]
		for i, item := range items {
			k := keys[i]
			ent, ok := entries[k]
			if ok {
				ent.item.Set(item)
			} else {
				ent = &eachEntry[T]{
					owner: ctx.owner.NewChild(),
					item:  NewSignalFunc(ctx.Runtime(), item, nil),
				}
				ctx.Runtime().Untrack(func() {
					if child := e.render(ent.item.Get); child != nil {
						ent.slot = child.mount(ctx.withOwner(ent.owner))
					}
				})
			}
			next[k] = ent
			order = append(order, ent)
		}
		for k, ent := range entries {
			if _, keep := next[k]; !keep {
				ent.owner.Dispose()
			}
		}
		entries = next

		var out []*Token
		for _, ent := range order {
			if ent.slot != nil {
				out = append(out, ent.slot.tokens()...)
			}
		}
		return out
	})
	return eachSlot{memo: memo}
}

func (e eachSlot) tokens() []*Token {
	return e.memo.Get()
}

// --- TokenTree ---

// TokenTree is a mounted, ordered sequence of live tokens. Its token list is
// resolved lazily: a change to any structural input (a When condition, an
// Each list) marks it stale, and the next Tokens call re-resolves it once.
type TokenTree struct {
	owner *Owner
	root  slot
	memo  *Memo[[]*Token]
}

// NewTokenTree mounts children under a new child owner of ctx's owner.
func NewTokenTree(ctx Context, children ...Child) *TokenTree {
	if !ctx.Valid() {
		panic("canopy: NewTokenTree requires a scene context")
	}
	t := &TokenTree{owner: ctx.owner.NewChild()}
	ctx.Runtime().Untrack(func() {
		t.root = Fragment(children...).mount(ctx.withOwner(t.owner))
	})
	t.memo = NewMemo(t.owner, t.root.tokens)
	return t
}

// Tokens returns the tokens in declaration order, re-resolving if stale.
// The slice must not be modified.
func (t *TokenTree) Tokens() []*Token {
	return t.memo.Get()
}

// Len returns the number of resolved tokens.
func (t *TokenTree) Len() int {
	return len(t.memo.Get())
}

// Resolutions returns how many times the tree has been resolved.
func (t *TokenTree) Resolutions() int {
	return t.memo.Runs()
}

// Dispose releases every token in the tree.
func (t *TokenTree) Dispose() {
	t.owner.Dispose()
}
