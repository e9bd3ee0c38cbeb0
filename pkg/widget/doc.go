// Package widget provides the stock components: flex containers, text,
// solid colors, plain views, error boundaries and size-aware layouts.
//
// Components are pointer types embedding component.Props:
//
//	&widget.Column{
//	    Children: []component.Component{
//	        &widget.Text{Text: "Title"},
//	        &widget.SolidColor{Color: graphics.RGB(200, 0, 0), Props: component.Props{Height: flex.Px(2)}},
//	    },
//	}
package widget
