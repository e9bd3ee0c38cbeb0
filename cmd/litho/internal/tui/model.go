// Package tui runs the litho demo feed as a Bubble Tea program.
//
// The Bubble Tea goroutine plays the main thread: every view operation runs
// inside Looper.Run, and background commits posted to the looper wake the
// program through its Notify channel.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-drift/litho/cmd/litho/internal/sample"
	"github.com/go-drift/litho/pkg/config"
	"github.com/go-drift/litho/pkg/dynamic"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/litho"
	"github.com/go-drift/litho/pkg/pool"
	"github.com/go-drift/litho/pkg/trace"
	"github.com/go-drift/litho/pkg/transition"
	"github.com/go-drift/litho/pkg/view"
)

const (
	chromeLines  = 2
	tickInterval = 150 * time.Millisecond
	maxEvents    = 4
)

type tickMsg time.Time

type looperMsg struct{}

// Model is the demo state. Use New, then either run it with Bubble Tea or
// call Resize and Frame for a static render.
type Model struct {
	looper *litho.Looper
	pools  *pool.Registry
	ctx    pool.Context
	view   *litho.LithoView

	feed     sample.Feed
	nextID   int
	pulse    *dynamic.Value[graphics.Color]
	pulseIdx int

	width, height int
	contentHeight int
	offset        int
	events        []string
	styles        Styles
}

// New returns a model showing items rows. When rec is set and tracing is
// enabled, mount events are recorded into it.
func New(cfg config.Config, items int, rec *trace.Recorder) *Model {
	m := &Model{
		looper: litho.NewLooper(),
		pools:  pool.NewRegistry(),
		ctx:    pool.NewRootContext("demo"),
		nextID: items + 1,
		pulse:  dynamic.New(sample.PulseColors()[0]),
		styles: DefaultStyles(),
	}
	m.pools.OnContextCreated(m.ctx)
	m.view = litho.NewLithoView(litho.ViewOptions{
		Config:      cfg,
		Main:        m.looper,
		Pools:       m.pools,
		HostContext: m.ctx,
		Schedule:    transition.TimerScheduler(m.looper.Post),
		Recorder:    rec,
	})
	m.feed = sample.Feed{
		Title:     "litho demo",
		Items:     sample.Items(items),
		Pulse:     m.pulse,
		OnVisible: m.onVisible,
	}
	return m
}

// LithoView returns the view the model drives.
func (m *Model) LithoView() *litho.LithoView { return m.view }

// Run executes fn as a main thread callback.
func (m *Model) Run(fn func()) { m.looper.Run(fn) }

// ScrollBy moves the scroll window by n rows.
func (m *Model) ScrollBy(n int) { m.scrollTo(m.offset + n) }

// Close releases the view and its pools.
func (m *Model) Close() {
	m.looper.Run(m.view.Release)
	m.pools.OnContextDestroyed(m.ctx)
}

func (m *Model) onVisible(key string) {
	m.events = append(m.events, "visible "+key)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

// Resize lays the feed out for a terminal of width x height cells.
func (m *Model) Resize(width, height int) {
	m.width, m.height = width, height
	m.looper.Run(m.relayout)
}

func (m *Model) bodyHeight() int {
	return max(m.height-chromeLines, 1)
}

// relayout sets the feed as root, sizes the view to the content and shows
// the scroll window.
func (m *Model) relayout() {
	if m.width <= 0 {
		return
	}
	m.view.SetComponent(sample.Build(m.feed))
	_, h := m.view.Measure(flex.ExactSpec(m.width), flex.UnspecifiedSpec())
	m.contentHeight = h
	m.view.Layout(m.width, h)
	m.scrollTo(m.offset)
}

func (m *Model) scrollTo(offset int) {
	offset = min(offset, m.contentHeight-m.bodyHeight())
	m.offset = max(offset, 0)
	m.view.SetViewport(graphics.NewRect(0, m.offset, m.width, m.bodyHeight()))
}

// ensureSelectedVisible scrolls so the selected row is in the window. Rows
// follow the banner and title lines.
func (m *Model) ensureSelectedVisible() {
	y := m.feed.Selected + 2
	switch {
	case y < m.offset:
		m.scrollTo(y)
	case y >= m.offset+m.bodyHeight():
		m.scrollTo(y - m.bodyHeight() + 1)
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.waitLooper())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitLooper() tea.Cmd {
	return func() tea.Msg {
		<-m.looper.Notify()
		return looperMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
		return m, nil
	case tickMsg:
		m.looper.Run(m.advancePulse)
		return m, tick()
	case looperMsg:
		m.looper.Drain()
		return m, m.waitLooper()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// advancePulse cycles the banner color through its dynamic prop. Nothing is
// laid out again.
func (m *Model) advancePulse() {
	colors := sample.PulseColors()
	m.pulseIdx = (m.pulseIdx + 1) % len(colors)
	m.pulse.Set(colors[m.pulseIdx])
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.Close()
		return m, tea.Quit
	case "up", "k":
		m.looper.Run(func() { m.Select(m.feed.Selected - 1) })
	case "down", "j":
		m.looper.Run(func() { m.Select(m.feed.Selected + 1) })
	case "pgup":
		m.looper.Run(func() { m.scrollTo(m.offset - m.bodyHeight()) })
	case "pgdown", " ":
		m.looper.Run(func() { m.scrollTo(m.offset + m.bodyHeight()) })
	case "x", "delete":
		m.looper.Run(m.RemoveSelected)
	case "a":
		m.looper.Run(m.Add)
	case "r":
		m.looper.Run(func() {
			m.view.UnmountAllItems()
			m.view.SetMountStateDirty()
			m.view.NotifyVisibleBoundsChangedFull()
		})
	}
	return m, nil
}

// Select moves the selection to index, clamped to the feed.
func (m *Model) Select(index int) {
	if len(m.feed.Items) == 0 {
		return
	}
	m.feed.Selected = min(max(index, 0), len(m.feed.Items)-1)
	m.relayout()
	m.ensureSelectedVisible()
}

// RemoveSelected drops the selected row. The row stays mounted while its
// disappear transition runs.
func (m *Model) RemoveSelected() {
	if len(m.feed.Items) == 0 {
		return
	}
	i := m.feed.Selected
	m.feed.Items = append(m.feed.Items[:i:i], m.feed.Items[i+1:]...)
	if m.feed.Selected >= len(m.feed.Items) {
		m.feed.Selected = max(len(m.feed.Items)-1, 0)
	}
	m.relayout()
}

// Add appends a row after the selection.
func (m *Model) Add() {
	it := sample.Item{ID: m.nextID, Title: fmt.Sprintf("Item %d", m.nextID)}
	m.nextID++
	at := min(m.feed.Selected+1, len(m.feed.Items))
	items := make([]sample.Item, 0, len(m.feed.Items)+1)
	items = append(items, m.feed.Items[:at]...)
	items = append(items, it)
	m.feed.Items = append(items, m.feed.Items[at:]...)
	m.feed.Selected = at
	m.relayout()
	m.ensureSelectedVisible()
}

func (m *Model) View() string {
	return m.Frame(true)
}

// Frame renders the scroll window and the status line. With color unset
// the output is plain text.
func (m *Model) Frame(color bool) string {
	if m.width <= 0 || m.contentHeight <= 0 {
		return ""
	}
	g := view.NewGrid(m.width, m.contentHeight)
	m.view.Draw(g)

	var sb strings.Builder
	end := min(m.offset+m.bodyHeight(), m.contentHeight)
	for y := m.offset; y < end; y++ {
		sb.WriteString(RenderLine(g, y, color))
		sb.WriteByte('\n')
	}
	for y := end - m.offset; y < m.bodyHeight(); y++ {
		sb.WriteByte('\n')
	}
	status := m.Status()
	help := "↑/↓ select  pgup/pgdn scroll  a add  x remove  r remount  q quit"
	if len(m.events) > 0 {
		help = m.events[len(m.events)-1]
	}
	if color {
		sb.WriteString(m.styles.Status.Width(m.width).Render(status))
		sb.WriteByte('\n')
		if len(m.events) > 0 {
			sb.WriteString(m.styles.Event.Render(help))
		} else {
			sb.WriteString(m.styles.Help.Render(help))
		}
	} else {
		sb.WriteString(status)
		sb.WriteByte('\n')
		sb.WriteString(help)
	}
	return sb.String()
}

// Status summarizes what is mounted.
func (m *Model) Status() string {
	ms := m.view.MountState()
	stats := ms.Stats()
	return fmt.Sprintf("items %d  mounted %d  created %d  reused %d  disappearing %d  rows %d-%d",
		len(m.feed.Items), ms.MountItemCount(), stats.Created, stats.Reacquired,
		len(m.view.DisappearingKeys()), m.offset, min(m.offset+m.bodyHeight(), m.contentHeight))
}
