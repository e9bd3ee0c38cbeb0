package dynamic

import "testing"

type recorder struct {
	seen []any
}

func (r *recorder) OnValueChange(o Observable) {
	r.seen = append(r.seen, o.Current())
}

func TestSetNotifiesEvenWhenUnchanged(t *testing.T) {
	v := New[float32](0.8)
	r := &recorder{}
	v.Attach(r)

	v.Set(0.8)
	v.Set(0.8)

	if len(r.seen) != 2 {
		t.Fatalf("listener saw %d notifications, want 2", len(r.seen))
	}
}

func TestDetachStopsNotifications(t *testing.T) {
	v := New("a")
	r := &recorder{}
	v.Attach(r)
	v.Attach(r)
	if v.ListenerCount() != 1 {
		t.Fatalf("ListenerCount = %d, want 1 after duplicate attach", v.ListenerCount())
	}

	v.Detach(r)
	v.Set("b")
	if len(r.seen) != 0 {
		t.Errorf("detached listener saw %v", r.seen)
	}
	if v.Get() != "b" {
		t.Errorf("Get = %q, want b", v.Get())
	}
}

type detachOnChange struct {
	v     *Value[int]
	other *recorder
}

func (d *detachOnChange) OnValueChange(Observable) {
	d.v.Detach(d)
	d.v.Detach(d.other)
}

func TestListenerMayDetachDuringNotify(t *testing.T) {
	v := New(0)
	other := &recorder{}
	d := &detachOnChange{v: v, other: other}
	v.Attach(d)
	v.Attach(other)

	v.Set(1)

	if len(other.seen) != 1 {
		t.Errorf("snapshot should still deliver to other listener, got %v", other.seen)
	}
	if v.ListenerCount() != 0 {
		t.Errorf("ListenerCount = %d, want 0", v.ListenerCount())
	}
}

func TestDerivedFollowsSource(t *testing.T) {
	src := New(10)
	half := Derive(src, func(n int) float32 { return float32(n) / 2 })
	if half.Get() != 5 {
		t.Fatalf("Get = %v, want 5", half.Get())
	}

	r := &recorder{}
	half.Attach(r)
	if src.ListenerCount() != 1 {
		t.Fatalf("derived value should subscribe to source on first listener")
	}

	src.Set(3)
	if len(r.seen) != 1 || r.seen[0] != float32(1.5) {
		t.Errorf("seen = %v, want [1.5]", r.seen)
	}

	half.Detach(r)
	if src.ListenerCount() != 0 {
		t.Errorf("derived value should leave source after last listener")
	}
}
