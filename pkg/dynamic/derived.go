package dynamic

// Derived is a read-only observable computed from another observable. It
// subscribes to its source only while it has listeners of its own.
type Derived[S, T any] struct {
	source    *Value[S]
	fn        func(S) T
	listeners listeners
}

// Derive returns an observable whose value is fn applied to src.
func Derive[S, T any](src *Value[S], fn func(S) T) *Derived[S, T] {
	return &Derived[S, T]{source: src, fn: fn}
}

// Get returns fn applied to the source's current value.
func (d *Derived[S, T]) Get() T {
	return d.fn(d.source.Get())
}

// Current returns the derived value as any.
func (d *Derived[S, T]) Current() any {
	return d.Get()
}

// Attach subscribes l, subscribing to the source on the first listener.
func (d *Derived[S, T]) Attach(l Listener) {
	if d.listeners.attach(l) {
		d.source.Attach(d)
	}
}

// Detach unsubscribes l, leaving the source when the last listener goes.
func (d *Derived[S, T]) Detach(l Listener) {
	if d.listeners.detach(l) {
		d.source.Detach(d)
	}
}

// OnValueChange forwards source changes to the derived value's listeners.
func (d *Derived[S, T]) OnValueChange(Observable) {
	for _, l := range d.listeners.snapshot() {
		l.OnValueChange(d)
	}
}
