package pool

// Context is a rendering context that scopes mount content pools, the
// equivalent of an activity. Contexts form wrapper chains: a wrapper
// delegates to its base, and all pools of a chain die with its root.
type Context interface {
	// BaseContext returns the wrapped context, or nil for a root.
	BaseContext() Context
	// Name identifies the context in diagnostics.
	Name() string
}

type hostContext struct {
	name string
	base Context
}

func (c *hostContext) BaseContext() Context { return c.base }
func (c *hostContext) Name() string         { return c.name }

// NewRootContext returns a new root context.
func NewRootContext(name string) Context {
	return &hostContext{name: name}
}

// Wrap returns a context that delegates to base.
func Wrap(base Context, name string) Context {
	return &hostContext{name: name, base: base}
}

// RootOf walks the wrapper chain of ctx to its root.
func RootOf(ctx Context) Context {
	for ctx != nil {
		base := ctx.BaseContext()
		if base == nil {
			return ctx
		}
		ctx = base
	}
	return nil
}

// chainReaches reports whether target is ctx or one of its bases.
func chainReaches(ctx, target Context) bool {
	for c := ctx; c != nil; c = c.BaseContext() {
		if c == target {
			return true
		}
	}
	return false
}
