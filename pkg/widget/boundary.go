package widget

import (
	"github.com/go-drift/litho/pkg/component"
)

// ErrorBoundary renders Child until a descendant callback fails, then
// renders Fallback with the error. The error is kept as the boundary's
// state, so it survives later layouts until Reset.
type ErrorBoundary struct {
	component.Props
	Child    component.Component
	Fallback func(err error) component.Component
	// Report is called with every caught error.
	Report func(err error)
}

type boundaryState struct{ err error }

func (b *ErrorBoundary) Kind() component.Kind             { return component.KindLayout }
func (b *ErrorBoundary) ShallowCopy() component.Component { return component.Copy(b) }

func (b *ErrorBoundary) IsEquivalentTo(other component.Component) bool {
	o, ok := other.(*ErrorBoundary)
	return ok && b.Child == o.Child && b.Props.IsEquivalentTo(&o.Props)
}

func (b *ErrorBoundary) InitialState(*component.Context) any { return boundaryState{} }

func (b *ErrorBoundary) Render(c *component.Context) component.Component {
	if st, _ := c.State().(boundaryState); st.err != nil {
		if b.Fallback == nil {
			return nil
		}
		return b.Fallback(st.err)
	}
	return b.Child
}

// OnError records err and schedules a layout showing the fallback.
func (b *ErrorBoundary) OnError(c *component.Context, err error) {
	if b.Report != nil {
		b.Report(err)
	}
	c.UpdateStateAsync(func(any) any { return boundaryState{err: err} })
}

// Reset clears the caught error so Child renders again.
func Reset(c *component.Context) {
	c.UpdateStateAsync(func(any) any { return boundaryState{} })
}

var (
	_ component.Renderer      = (*ErrorBoundary)(nil)
	_ component.ErrorBoundary = (*ErrorBoundary)(nil)
	_ component.Stateful      = (*ErrorBoundary)(nil)
)
