package view

import (
	"slices"

	"github.com/go-drift/litho/pkg/graphics"
)

type hostChild struct {
	index   int
	content any
}

// Host is a view that holds mounted child content in position order.
// Children are views, hosts or drawables.
type Host struct {
	View
	children []hostChild
}

// NewHost creates an empty host with canonical property values.
func NewHost() *Host {
	h := &Host{}
	h.Reset()
	return h
}

// MountChild inserts content at the given position index. Indices are the
// render positions of the mounted items and need not be contiguous.
func (h *Host) MountChild(index int, content any) {
	i, _ := slices.BinarySearchFunc(h.children, index, func(c hostChild, idx int) int {
		return c.index - idx
	})
	h.children = slices.Insert(h.children, i, hostChild{index: index, content: content})
}

// UnmountChild removes content. It reports whether the content was a child.
func (h *Host) UnmountChild(content any) bool {
	for i, c := range h.children {
		if c.content == content {
			h.children = slices.Delete(h.children, i, i+1)
			return true
		}
	}
	return false
}

// MoveChild changes the position index of mounted content.
func (h *Host) MoveChild(content any, index int) {
	if h.UnmountChild(content) {
		h.MountChild(index, content)
	}
}

// Children returns mounted content in position order.
func (h *Host) Children() []any {
	out := make([]any, len(h.children))
	for i, c := range h.children {
		out[i] = c.content
	}
	return out
}

// ChildCount returns the number of mounted children.
func (h *Host) ChildCount() int {
	return len(h.children)
}

// ResetForPool resets the host. Children must already be unmounted.
func (h *Host) ResetForPool() {
	h.View.ResetForPool()
	h.children = h.children[:0]
}

// Draw paints the host and then its children in position order.
func (h *Host) Draw(c Canvas, dx, dy int) {
	if h.alpha <= 0 {
		return
	}
	h.View.Draw(c, dx, dy)
	origin := h.bounds.Translate(dx+int(h.translationX), dy+int(h.translationY))
	for _, child := range h.children {
		if d, ok := child.content.(interface{ Draw(Canvas, int, int) }); ok {
			d.Draw(c, origin.X, origin.Y)
		}
	}
}

// SetContentBounds applies bounds to any content that accepts them.
func SetContentBounds(content any, r graphics.Rect) {
	if b, ok := content.(interface{ SetBounds(graphics.Rect) }); ok {
		b.SetBounds(r)
	}
}

// ContentBounds returns the bounds of content, or the zero Rect.
func ContentBounds(content any) graphics.Rect {
	if b, ok := content.(interface{ Bounds() graphics.Rect }); ok {
		return b.Bounds()
	}
	return graphics.Rect{}
}
