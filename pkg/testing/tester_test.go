package testing

import (
	"testing"

	"github.com/go-drift/litho/pkg/component"
	"github.com/go-drift/litho/pkg/widget"
)

func TestTesterAsyncRootCommitsOnDrain(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.SetRootAsync(&widget.Text{Text: "later", Props: component.Props{TestKey: "later"}})
	if tester.FindByTestKey("later") != nil {
		t.Fatal("async root mounted before Drain")
	}
	if n := tester.Drain(); n == 0 {
		t.Fatal("Drain ran no callbacks")
	}
	if tester.FindByTestKey("later") == nil {
		t.Error("async root not mounted after Drain")
	}
}

func TestTesterLayoutResizes(t *testing.T) {
	tester := NewTesterWithT(t)
	tester.SetRoot(&widget.Column{Children: []component.Component{&widget.Text{Text: "a"}}})
	tester.Layout(10, 2)
	if w, h := tester.LayoutState().Width(), tester.LayoutState().Height(); w != 10 || h != 2 {
		t.Errorf("layout = %dx%d, want 10x2", w, h)
	}
	if got := tester.Render(); got != "a\n" {
		t.Errorf("Render = %q, want %q", got, "a\n")
	}
}
