// Package testing provides a harness for testing components mounted in a
// LithoView.
//
// # Quick Start
//
// Create a tester, set a root component, and make assertions on what is
// mounted:
//
//	func TestMyComponent(t *testing.T) {
//	    tester := lithotest.NewTesterWithT(t)
//	    tester.SetRoot(widget.Text{Text: "hello", Props: component.Props{TestKey: "greeting"}})
//
//	    if tester.FindByTestKey("greeting") == nil {
//	        t.Error("expected greeting to be mounted")
//	    }
//	}
//
// # Background Layouts
//
// Async requests compute their layout right away but only commit once the
// tester drains its main looper:
//
//	tester.SetRootAsync(next)
//	tester.Drain()
//
// # Transition Testing
//
// Disappear timers run on a fake clock:
//
//	tester.Advance(300 * time.Millisecond)
package testing
