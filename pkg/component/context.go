package component

import (
	"log"
	"strconv"
	"time"

	"github.com/go-drift/litho/pkg/config"
	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/state"
)

// KeySeparator joins the segments of a global key.
const KeySeparator = ","

// Tree holds what every context of one component tree shares.
type Tree struct {
	Config  config.Config
	Host    pool.Context
	Updater StateUpdater
}

// Context is the scoped context of one component in one layout. It carries
// the component's global key and state, and routes callback failures to the
// nearest error boundary.
type Context struct {
	tree      *Tree
	component Component
	globalKey string
	parent    *Context
	// boundary is the context of the closest ancestor error boundary.
	boundary *Context

	state    any
	hasState bool

	counters map[string]int
}

// NewRootContext returns the scoped context for the root component.
func NewRootContext(tree *Tree, root Component) *Context {
	return &Context{tree: tree, component: root, globalKey: keySegment(root)}
}

// NewContext returns a context for c with an explicit global key. It is
// used when a node is copied under the key it already had.
func NewContext(parent *Context, c Component, globalKey string) *Context {
	ctx := &Context{component: c, globalKey: globalKey, parent: parent}
	if parent != nil {
		ctx.tree = parent.tree
		ctx.boundary = parent.boundary
		if _, ok := parent.component.(ErrorBoundary); ok {
			ctx.boundary = parent
		}
	}
	return ctx
}

// Child returns a context for child with a fresh global key. Siblings of the
// same type get "!N" suffixes; manual keys take the form "$key".
func (c *Context) Child(child Component) *Context {
	seg := keySegment(child)
	if c.counters == nil {
		c.counters = make(map[string]int)
	}
	n := c.counters[seg]
	c.counters[seg] = n + 1
	if n > 0 {
		if child.CommonProps().Key != "" {
			log.Printf("litho: duplicate manual key %q under %s", child.CommonProps().Key, c.globalKey)
		}
		seg += "!" + strconv.Itoa(n)
	}
	return NewContext(c, child, c.globalKey+KeySeparator+seg)
}

// WithComponent returns a context with the same key and parent for a
// different component instance, such as an updated copy.
func (c *Context) WithComponent(comp Component) *Context {
	ctx := NewContext(c.parent, comp, c.globalKey)
	if c.parent == nil {
		ctx.tree = c.tree
	}
	ctx.state, ctx.hasState = c.state, c.hasState
	return ctx
}

func keySegment(c Component) string {
	if k := c.CommonProps().Key; k != "" {
		return "$" + k
	}
	return TypeName(c)
}

// GlobalKey returns the component's key, unique within its tree.
func (c *Context) GlobalKey() string { return c.globalKey }

// Component returns the component the context is scoped to.
func (c *Context) Component() Component { return c.component }

// Parent returns the parent's context, or nil for the root.
func (c *Context) Parent() *Context { return c.parent }

// Config returns the tree configuration.
func (c *Context) Config() config.Config {
	if c.tree == nil {
		return config.Default()
	}
	return c.tree.Config
}

// HostContext returns the rendering context that scopes content pools.
func (c *Context) HostContext() pool.Context {
	if c.tree == nil {
		return nil
	}
	return c.tree.Host
}

// Tree returns the shared tree data.
func (c *Context) Tree() *Tree { return c.tree }

// State returns the component's state, or nil when it has none.
func (c *Context) State() any { return c.state }

// HasState reports whether state was attached.
func (c *Context) HasState() bool { return c.hasState }

// AttachState sets the resolved state. It is called during layout.
func (c *Context) AttachState(v any) {
	c.state, c.hasState = v, true
}

// UpdateStateAsync enqueues fn for this component and schedules a layout on
// the background executor.
func (c *Context) UpdateStateAsync(fn state.Update) {
	c.updateState(fn, true)
}

// UpdateStateSync enqueues fn and lays out on the calling goroutine.
func (c *Context) UpdateStateSync(fn state.Update) {
	c.updateState(fn, false)
}

func (c *Context) updateState(fn state.Update, async bool) {
	if c.tree == nil || c.tree.Updater == nil {
		return
	}
	c.tree.Updater.EnqueueStateUpdate(c.globalKey, fn, async)
}

// ErrorBoundary returns the context of the closest ancestor error boundary.
func (c *Context) ErrorBoundary() *Context { return c.boundary }

// HandleError routes err to the closest error boundary. Without one, err is
// raised as a panic.
func (c *Context) HandleError(err error) {
	b := c.boundary
	if b == nil {
		panic(err)
	}
	if cbErr, ok := err.(*errors.CallbackError); ok {
		errors.ReportCallbackError(cbErr)
	}
	b.component.(ErrorBoundary).OnError(b, err)
}

// Guard runs fn as the named callback of this component. A returned error
// or a panic is routed through HandleError and Guard reports false.
// Invariant and configuration panics are never routed.
func (c *Context) Guard(callback string, fn func() error) (ok bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch r.(type) {
		case *errors.InvariantError, *errors.ConfigError:
			panic(r)
		}
		ok = false
		c.HandleError(c.callbackError(callback, r, nil))
	}()
	if err := fn(); err != nil {
		c.HandleError(c.callbackError(callback, nil, err))
		return false
	}
	return true
}

func (c *Context) callbackError(callback string, recovered any, err error) *errors.CallbackError {
	if cbErr, ok := recovered.(*errors.CallbackError); ok {
		return cbErr
	}
	return &errors.CallbackError{
		Component:  TypeName(c.component),
		Callback:   callback,
		Key:        c.globalKey,
		Recovered:  recovered,
		Err:        err,
		StackTrace: errors.Stack(),
		Timestamp:  time.Now(),
	}
}
