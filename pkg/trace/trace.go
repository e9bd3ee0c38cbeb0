// Package trace records mount and layout events for debugging. Events are
// kept in a bounded in-memory buffer and optionally persisted to a bbolt
// database for the "litho trace" command.
package trace

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/mount"
)

// Event kinds.
const (
	KindMount     = "mount"
	KindUnmount   = "unmount"
	KindBind      = "bind"
	KindUnbind    = "unbind"
	KindBounds    = "bounds"
	KindMountPass = "mount-pass"
	KindLayout    = "layout"
	KindCommit    = "commit"
)

// Event is one recorded occurrence.
type Event struct {
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`
	Kind   string    `json:"kind"`
	ID     uint64    `json:"id,omitempty"`
	Unit   string    `json:"unit,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

func (e Event) String() string {
	s := fmt.Sprintf("#%d %s", e.Seq, e.Kind)
	if e.Unit != "" {
		s += " " + e.Unit
	}
	if e.Detail != "" {
		s += " " + e.Detail
	}
	return s
}

// Sink persists events.
type Sink interface {
	Write(ev Event) error
	Close() error
}

// Recorder buffers the most recent events and forwards them to sinks.
type Recorder struct {
	mu     sync.Mutex
	seq    uint64
	max    int
	events []Event
	sinks  []Sink
	// Now is the clock; tests replace it.
	Now func() time.Time
}

// NewRecorder keeps up to max events in memory.
func NewRecorder(max int, sinks ...Sink) *Recorder {
	return &Recorder{max: max, sinks: sinks, Now: time.Now}
}

// Record appends an event. Sink failures are returned but the event is kept
// in memory regardless.
func (r *Recorder) Record(kind string, id uint64, unit, detail string) error {
	r.mu.Lock()
	r.seq++
	ev := Event{Seq: r.seq, Time: r.Now(), Kind: kind, ID: id, Unit: unit, Detail: detail}
	if r.max > 0 {
		if len(r.events) == r.max {
			copy(r.events, r.events[1:])
			r.events = r.events[:r.max-1]
		}
		r.events = append(r.events, ev)
	}
	sinks := r.sinks
	r.mu.Unlock()

	var firstErr error
	for _, s := range sinks {
		if err := s.Write(ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Events returns a copy of the buffered events, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Kinds returns the kinds of the buffered events, oldest first.
func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

// Reset drops buffered events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = r.events[:0]
}

// Close closes every sink.
func (r *Recorder) Close() error {
	r.mu.Lock()
	sinks := r.sinks
	r.sinks = nil
	r.mu.Unlock()
	var firstErr error
	for _, s := range sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Extension records item life cycle events.
type Extension struct {
	mount.BaseExtension
	rec *Recorder
}

// NewExtension returns an extension recording into rec.
func NewExtension(rec *Recorder) *Extension {
	return &Extension{rec: rec}
}

func (e *Extension) Name() string { return "trace" }

// Recorder returns the recorder events go to.
func (e *Extension) Recorder() *Recorder { return e.rec }

func (e *Extension) OnMountItem(_ *mount.ExtensionState, unit mount.RenderUnit, _, _ any) {
	e.rec.Record(KindMount, unit.ID(), unit.Description(), "")
}

func (e *Extension) OnBindItem(_ *mount.ExtensionState, unit mount.RenderUnit, _, _ any) {
	e.rec.Record(KindBind, unit.ID(), unit.Description(), "")
}

func (e *Extension) OnUnbindItem(_ *mount.ExtensionState, unit mount.RenderUnit, _, _ any) {
	e.rec.Record(KindUnbind, unit.ID(), unit.Description(), "")
}

func (e *Extension) OnUnmountItem(_ *mount.ExtensionState, unit mount.RenderUnit, _, _ any) {
	e.rec.Record(KindUnmount, unit.ID(), unit.Description(), "")
}

func (e *Extension) OnBoundsAppliedToItem(_ *mount.ExtensionState, node *mount.RenderTreeNode, _ any) {
	e.rec.Record(KindBounds, node.Unit().ID(), node.Unit().Description(), node.Bounds().String())
}

func (e *Extension) AfterMount(s *mount.ExtensionState) {
	ms := s.MountState()
	e.rec.Record(KindMountPass, 0, "", fmt.Sprintf("items=%d rect=%s", ms.MountItemCount(), ms.VisibleRect()))
}

func (e *Extension) OnVisibleBoundsChanged(_ *mount.ExtensionState, rect graphics.Rect) {
	e.rec.Record(KindMountPass, 0, "", "visible="+rect.String())
}

var _ mount.Extension = (*Extension)(nil)
