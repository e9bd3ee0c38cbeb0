package sample

import (
	"testing"

	"github.com/go-drift/litho/pkg/widget"
)

func TestBuild(t *testing.T) {
	root, ok := Build(Feed{Title: "t", Items: Items(3), Selected: 1}).(*widget.Column)
	if !ok {
		t.Fatalf("root = %T, want *widget.Column", root)
	}
	if got := len(root.Children); got != 5 {
		t.Fatalf("got %d children, want banner, title and 3 rows", got)
	}
	selected := root.Children[3].(*widget.Row)
	if selected.Key != RowKey(2) || selected.TransitionKey != RowKey(2) {
		t.Errorf("row keys = %q/%q, want %q", selected.Key, selected.TransitionKey, RowKey(2))
	}
	if selected.Background.A() == 0 {
		t.Error("selected row has no background")
	}
	if root.Children[2].(*widget.Row).Background.A() != 0 {
		t.Error("unselected row has a background")
	}
}
