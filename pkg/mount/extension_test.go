package mount

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/litho/pkg/errors"
	"github.com/go-drift/litho/pkg/graphics"
)

// logExtension records item callbacks under its name.
type logExtension struct {
	BaseExtension
	name string
	log  *[]string
}

func (e *logExtension) Name() string { return e.name }

func (e *logExtension) OnMountItem(s *ExtensionState, unit RenderUnit, content, data any) {
	*e.log = append(*e.log, e.name+" mount "+unit.Description())
}

func (e *logExtension) OnUnmountItem(s *ExtensionState, unit RenderUnit, content, data any) {
	*e.log = append(*e.log, e.name+" unmount "+unit.Description())
}

func TestExtensionCallbackOrder(t *testing.T) {
	var log []string
	ms, _ := newState(false)
	ms.RegisterExtension(&logExtension{name: "a", log: &log})
	ms.RegisterExtension(&logExtension{name: "b", log: &log})

	rect := graphics.NewRect(0, 0, 100, 10)
	ms.Mount(column(nil, 1), rect)
	ms.Mount(column(nil, 0), rect)

	want := []string{
		"a mount unit1", "b mount unit1",
		"a mount unit10", "b mount unit10",
		"b unmount unit10", "a unmount unit10",
	}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("callback order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterTwiceReturnsSameState(t *testing.T) {
	ms, _ := newState(false)
	ext := &logExtension{name: "a", log: new([]string)}
	s1 := ms.RegisterExtension(ext)
	s2 := ms.RegisterExtension(ext)
	if s1 != s2 {
		t.Error("registering twice returned different states")
	}
	if got := len(ms.Delegate().Extensions()); got != 1 {
		t.Errorf("Extensions() has %d entries, want 1", got)
	}
}

func TestRefKeepsItemMountedOutsideRect(t *testing.T) {
	ms, _ := newState(true)
	s := ms.RegisterExtension(&logExtension{name: "holder", log: new([]string)})
	tree := column(nil, 3)
	ms.Mount(tree, graphics.NewRect(0, 0, 100, 30))

	s.AcquireMountRef(12, false)
	ms.NotifyVisibleBoundsChanged(graphics.NewRect(0, 0, 100, 10))
	if !ms.IsMounted(12) {
		t.Fatal("item with a ref was unmounted")
	}
	if ms.IsMounted(11) {
		t.Error("item 11 should be unmounted")
	}

	s.ReleaseMountRef(12, true)
	if ms.IsMounted(12) {
		t.Error("item 12 should be unmounted once its ref is released")
	}
}

func TestAcquireAndMountRefMountsRightAway(t *testing.T) {
	ms, _ := newState(true)
	s := ms.RegisterExtension(&logExtension{name: "holder", log: new([]string)})
	ms.Mount(column(nil, 3), graphics.NewRect(0, 0, 100, 10))
	if ms.IsMounted(12) {
		t.Fatal("item 12 should start unmounted")
	}

	s.AcquireMountRef(12, true)
	if !ms.IsMounted(12) {
		t.Fatal("AcquireMountRef with mount set did not mount the item")
	}
	if got := ms.Delegate().RefCount(12); got != 1 {
		t.Errorf("RefCount = %d, want 1", got)
	}
}

func TestRefCounting(t *testing.T) {
	ms, _ := newState(true)
	a := ms.RegisterExtension(&logExtension{name: "a", log: new([]string)})
	b := ms.RegisterExtension(&logExtension{name: "b", log: new([]string)})
	ms.Mount(column(nil, 3), graphics.NewRect(0, 0, 100, 10))
	d := ms.Delegate()

	a.AcquireMountRef(12, true)
	a.AcquireMountRef(12, true)
	b.AcquireMountRef(12, true)
	if got := d.RefCount(12); got != 2 {
		t.Fatalf("RefCount = %d, want 2 (one per extension)", got)
	}

	a.ReleaseMountRef(12, true)
	if !ms.IsMounted(12) {
		t.Fatal("item unmounted while another extension holds a ref")
	}
	b.ReleaseMountRef(12, true)
	if d.HasAcquiredRef(12) {
		t.Error("HasAcquiredRef after all refs were released")
	}
	if ms.IsMounted(12) {
		t.Error("item still mounted after all refs were released")
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	ms, _ := newState(true)
	s := ms.RegisterExtension(&logExtension{name: "holder", log: new([]string)})
	ms.Mount(column(nil, 2), graphics.NewRect(0, 0, 100, 20))

	s.AcquireMountRef(11, false)
	s.ReleaseMountRef(11, false)
	mustPanic(t, errors.ErrUnownedRef, func() {
		s.ReleaseMountRef(11, false)
	})
}

func TestDelegateReleaseAtZeroPanics(t *testing.T) {
	ms, _ := newState(true)
	mustPanic(t, errors.ErrUnownedRef, func() {
		ms.Delegate().ReleaseMountRef(42)
	})
}

func TestUnregisterReleasesRefs(t *testing.T) {
	ms, _ := newState(true)
	ext := &logExtension{name: "holder", log: new([]string)}
	s := ms.RegisterExtension(ext)
	ms.Mount(column(nil, 2), graphics.NewRect(0, 0, 100, 20))
	s.AcquireMountRef(10, false)
	s.AcquireMountRef(11, false)

	ms.UnregisterExtension(ext)
	for _, id := range []uint64{10, 11} {
		if ms.Delegate().HasAcquiredRef(id) {
			t.Errorf("ref on %d survived Unregister", id)
		}
	}
}

// holdRemoved keeps a ref on a removed item until released.
type holdRemoved struct {
	BaseExtension
	id uint64
}

func (*holdRemoved) Name() string { return "hold" }

func (e *holdRemoved) BeforeMount(s *ExtensionState, tree *RenderTree, rect graphics.Rect) {
	if _, ok := tree.Lookup(e.id); !ok && s.MountState().IsMounted(e.id) && !s.OwnsReference(e.id) {
		s.AcquireMountRef(e.id, false)
	}
}

func TestRemovedItemHeldByRefStaysMounted(t *testing.T) {
	ms, _ := newState(false)
	ext := &holdRemoved{id: 11}
	s := ms.RegisterExtension(ext)
	rect := graphics.NewRect(0, 0, 100, 20)
	ms.Mount(column(nil, 2), rect)
	ms.Mount(column(nil, 1), rect)

	if !ms.IsMounted(11) {
		t.Fatal("removed item held by a ref was unmounted")
	}
	s.ReleaseMountRef(11, true)
	if ms.IsMounted(11) {
		t.Error("removed item still mounted after its ref was released")
	}
}

// nested builds root(1) > host(20) > leaf(21).
func nested() *RenderTree {
	root := NewRenderTreeNode(nil, &testUnit{id: 1, host: true}, nil, graphics.NewRect(0, 0, 100, 10))
	host := NewRenderTreeNode(root, &testUnit{id: 20, host: true}, nil, graphics.NewRect(0, 0, 100, 10))
	NewRenderTreeNode(host, &testUnit{id: 21}, nil, graphics.NewRect(0, 0, 100, 10))
	return NewRenderTree(root, nil)
}

func TestRemovedHostOfHeldItemStaysMounted(t *testing.T) {
	ms, root := newState(false)
	s := ms.RegisterExtension(&logExtension{name: "holder", log: new([]string)})
	rect := graphics.NewRect(0, 0, 100, 10)
	ms.Mount(nested(), rect)
	leaf := ms.ContentFor(21)

	s.AcquireMountRef(21, false)
	ms.Mount(column(nil, 0), rect)
	if !ms.IsMounted(21) || !ms.IsMounted(20) {
		t.Fatalf("held leaf or its host was unmounted: leaf=%v host=%v", ms.IsMounted(21), ms.IsMounted(20))
	}
	if ms.ContentFor(21) != leaf {
		t.Error("held leaf lost its content")
	}

	s.ReleaseMountRef(21, true)
	if ms.IsMounted(21) || ms.IsMounted(20) {
		t.Errorf("after release leaf=%v host=%v, want both unmounted", ms.IsMounted(21), ms.IsMounted(20))
	}
	if got := root.ChildCount(); got != 0 {
		t.Errorf("root host has %d children, want 0", got)
	}
}

func TestUnregisterUnmountsRemovedItems(t *testing.T) {
	ms, _ := newState(false)
	ext := &holdRemoved{id: 11}
	ms.RegisterExtension(ext)
	rect := graphics.NewRect(0, 0, 100, 20)
	ms.Mount(column(nil, 2), rect)
	ms.Mount(column(nil, 1), rect)
	if !ms.IsMounted(11) {
		t.Fatal("removed item held by a ref was unmounted")
	}

	ms.UnregisterExtension(ext)
	if ms.IsMounted(11) {
		t.Error("item held only by the unregistered extension is still mounted")
	}
	if !ms.IsMounted(10) {
		t.Error("item still in the tree was unmounted")
	}
}
