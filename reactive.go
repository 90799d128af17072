package canopy

// Runtime tracks which computation is currently reading reactive values.
// A Runtime is single-threaded: the signals, memos and owners created from it
// must all be used from the goroutine that drives the scene.
type Runtime struct {
	observer *computation
	root     *Owner
}

// NewRuntime creates a Runtime with an empty root owner.
func NewRuntime() *Runtime {
	rt := &Runtime{}
	rt.root = &Owner{rt: rt}
	return rt
}

// Root returns the owner that everything created by this runtime hangs from.
func (rt *Runtime) Root() *Owner {
	return rt.root
}

// Untrack runs fn without recording reads as dependencies of the current
// computation.
func (rt *Runtime) Untrack(fn func()) {
	prev := rt.observer
	rt.observer = nil
	defer func() { rt.observer = prev }()
	fn()
}

// Untrack evaluates fn without recording reads as dependencies and returns
// its result.
func Untrack[T any](rt *Runtime, fn func() T) T {
	var v T
	rt.Untrack(func() { v = fn() })
	return v
}

// --- Dependency graph ---

// node is anything a computation can depend on.
type node struct {
	observers []*computation
}

func (n *node) observe(c *computation) {
	if c == nil || c.disposed {
		return
	}
	for _, o := range n.observers {
		if o == c {
			return
		}
	}
	n.observers = append(n.observers, c)
	c.sources = append(c.sources, n)
}

func (n *node) unobserve(c *computation) {
	for i, o := range n.observers {
		if o == c {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

func (n *node) notify() {
	if len(n.observers) == 0 {
		return
	}
	snapshot := append([]*computation(nil), n.observers...)
	for _, o := range snapshot {
		o.markDirty()
	}
}

// computation is a derived value or watcher. It is dirty until run, and
// becomes dirty again when any source read during the last run changes.
type computation struct {
	node
	rt       *Runtime
	sources  []*node
	dirty    bool
	running  bool
	disposed bool
	onDirty  func()
}

func (c *computation) markDirty() {
	if c.dirty || c.disposed {
		return
	}
	c.dirty = true
	if c.onDirty != nil {
		c.onDirty()
	}
	c.notify()
}

func (c *computation) clearSources() {
	for _, s := range c.sources {
		s.unobserve(c)
	}
	c.sources = c.sources[:0]
}

// run executes fn with c as the current observer, replacing c's previous
// dependencies with the ones fn reads.
func (c *computation) run(fn func()) {
	if c.running {
		panic("canopy: reactive cycle detected")
	}
	c.clearSources()
	prev := c.rt.observer
	c.rt.observer = c
	c.running = true
	c.dirty = false
	defer func() {
		c.rt.observer = prev
		c.running = false
	}()
	fn()
}

func (c *computation) dispose() {
	c.disposed = true
	c.clearSources()
	c.observers = nil
}

// --- Signal ---

// Signal is a reactive value. Reading it with Get inside a memo or a tracked
// paint records a dependency; Set notifies every dependent.
type Signal[T any] struct {
	node
	rt    *Runtime
	value T
	equal func(a, b T) bool
}

// NewSignal creates a signal that skips notification when set to an equal
// value.
func NewSignal[T comparable](rt *Runtime, v T) *Signal[T] {
	return &Signal[T]{rt: rt, value: v, equal: func(a, b T) bool { return a == b }}
}

// NewSignalFunc creates a signal with a custom equality check. A nil equal
// notifies on every Set.
func NewSignalFunc[T any](rt *Runtime, v T, equal func(a, b T) bool) *Signal[T] {
	return &Signal[T]{rt: rt, value: v, equal: equal}
}

// Get returns the value and records a dependency on it.
func (s *Signal[T]) Get() T {
	s.observe(s.rt.observer)
	return s.value
}

// Peek returns the value without recording a dependency.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set stores v and notifies dependents if it differs from the current value.
func (s *Signal[T]) Set(v T) {
	if s.equal != nil && s.equal(s.value, v) {
		return
	}
	s.value = v
	s.notify()
}

// Update sets the value to fn(current).
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// --- Memo ---

// Memo is a lazily derived value. It recomputes on read after any of the
// values it read last time has changed, and at most once per change.
type Memo[T any] struct {
	comp  computation
	fn    func() T
	value T
	init  bool
	runs  int
}

// NewMemo creates a memo owned by o. It is released when o is disposed.
func NewMemo[T any](o *Owner, fn func() T) *Memo[T] {
	m := &Memo[T]{fn: fn}
	m.comp.rt = o.rt
	m.comp.dirty = true
	o.adopt(&m.comp)
	return m
}

// Get returns the current value, recomputing if stale, and records a
// dependency on the memo.
func (m *Memo[T]) Get() T {
	m.refresh()
	m.comp.observe(m.comp.rt.observer)
	return m.value
}

// Peek returns the current value without recording a dependency.
func (m *Memo[T]) Peek() T {
	m.refresh()
	return m.value
}

// Runs reports how many times the memo has computed its value.
func (m *Memo[T]) Runs() int {
	return m.runs
}

func (m *Memo[T]) refresh() {
	if m.comp.disposed {
		if !m.init {
			m.value = Untrack(m.comp.rt, m.fn)
			m.init = true
		}
		return
	}
	if !m.comp.dirty && m.init {
		return
	}
	m.comp.run(func() { m.value = m.fn() })
	m.init = true
	m.runs++
}

// --- Owner ---

// Owner scopes the lifetime of memos, cleanups and child owners. Disposing an
// owner disposes everything it owns, children first.
type Owner struct {
	rt       *Runtime
	parent   *Owner
	children []*Owner
	comps    []*computation
	cleanups []func()
	disposed bool
}

// Runtime returns the runtime the owner belongs to.
func (o *Owner) Runtime() *Runtime {
	return o.rt
}

// NewChild creates an owner disposed together with o.
func (o *Owner) NewChild() *Owner {
	c := &Owner{rt: o.rt, parent: o}
	if o.disposed {
		c.disposed = true
		return c
	}
	o.children = append(o.children, c)
	return c
}

// OnCleanup registers fn to run when the owner is disposed. Cleanups run in
// reverse registration order. Registering on a disposed owner runs fn
// immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed {
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
}

// Disposed reports whether Dispose has been called.
func (o *Owner) Disposed() bool {
	return o.disposed
}

// Dispose releases everything the owner holds. It is safe to call twice.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true
	for i := len(o.children) - 1; i >= 0; i-- {
		o.children[i].parent = nil
		o.children[i].Dispose()
	}
	o.children = nil
	for _, c := range o.comps {
		c.dispose()
	}
	o.comps = nil
	for i := len(o.cleanups) - 1; i >= 0; i-- {
		o.cleanups[i]()
	}
	o.cleanups = nil
	if o.parent != nil {
		o.parent.removeChild(o)
		o.parent = nil
	}
}

func (o *Owner) adopt(c *computation) {
	if o.disposed {
		c.dispose()
		return
	}
	o.comps = append(o.comps, c)
}

func (o *Owner) removeChild(c *Owner) {
	for i, ch := range o.children {
		if ch == c {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// newWatcher returns a computation that calls onDirty the first time any
// value it read during its last run changes.
func newWatcher(o *Owner, onDirty func()) *computation {
	c := &computation{rt: o.rt, onDirty: onDirty}
	o.adopt(c)
	return c
}
