// Package sample builds the component trees shown by the litho commands.
package sample

import (
	"fmt"
	"time"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/dynamic"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/graphics"
	"github.com/go-drift/litho/pkg/widget"
)

// DisappearDuration is how long a removed row stays mounted.
const DisappearDuration = 300 * time.Millisecond

var (
	headerColor   = graphics.RGB(0x3B, 0x42, 0x52)
	selectedColor = graphics.RGB(0x5E, 0x81, 0xAC)
	textColor     = graphics.RGB(0xEC, 0xEF, 0xF4)
	swatches      = []graphics.Color{
		graphics.RGB(0xBF, 0x61, 0x6A),
		graphics.RGB(0xD0, 0x87, 0x70),
		graphics.RGB(0xEB, 0xCB, 0x8B),
		graphics.RGB(0xA3, 0xBE, 0x8C),
		graphics.RGB(0xB4, 0x8E, 0xAD),
	}
)

// Item is one row of the feed.
type Item struct {
	ID    int
	Title string
}

// Items returns n items numbered from 1.
func Items(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: i + 1, Title: fmt.Sprintf("Item %d", i+1)}
	}
	return items
}

// Feed describes what the demo shows.
type Feed struct {
	Title    string
	Items    []Item
	Selected int
	// Pulse, when set, drives the banner background without relayout.
	Pulse dynamic.Observable
	// OnVisible is called with the key of each row entering the viewport.
	OnVisible func(key string)
}

// RowKey returns the component key of the row showing id.
func RowKey(id int) string { return fmt.Sprintf("item-%d", id) }

// Build returns the root component for f.
func Build(f Feed) component.Component {
	children := []component.Component{
		&widget.Surface{
			Props: component.Props{
				Key:             "banner",
				TestKey:         "banner",
				Height:          flex.Px(1),
				BackgroundColor: f.Pulse,
			},
			Color: headerColor,
		},
		&widget.Text{
			Props: component.Props{Key: "title", TestKey: "title", Background: headerColor},
			Text:  f.Title,
			Color: textColor,
		},
	}
	for i, it := range f.Items {
		children = append(children, row(f, i, it))
	}
	return &widget.Column{
		Props:    component.Props{Key: "feed"},
		Children: children,
	}
}

func row(f Feed, index int, it Item) component.Component {
	key := RowKey(it.ID)
	p := component.Props{
		Key:               key,
		TestKey:           key,
		Height:            flex.Px(1),
		TransitionKey:     key,
		DisappearDuration: DisappearDuration,
	}
	if index == f.Selected {
		p.Background = selectedColor
	}
	if f.OnVisible != nil {
		p.OnVisible = func(component.VisibilityEvent) { f.OnVisible(key) }
	}
	return &widget.Row{
		Props: p,
		Children: []component.Component{
			&widget.SolidColor{
				Props: component.Props{Width: flex.Px(2), Margin: graphics.Edges{Right: 1}},
				Color: swatches[it.ID%len(swatches)],
			},
			&widget.Text{
				Props:    component.Props{FlexGrow: 1},
				Text:     it.Title,
				Color:    textColor,
				MaxLines: 1,
			},
		},
	}
}

// PulseColors returns the banner colors cycled by the demo.
func PulseColors() []graphics.Color {
	return append([]graphics.Color(nil), swatches...)
}
