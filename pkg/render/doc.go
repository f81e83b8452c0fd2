// Package render turns vdom trees into HTML.
//
// The renderer writes attributes in sorted order so the output is stable
// across renders, which keeps pushed fragments diffable and tests simple.
// Internal props (keys starting with "_") are never written.
//
//	html, err := render.HTML(vdom.Div(vdom.Class("card"), vdom.Text("hi")))
//	// <div class="card">hi</div>
package render
