// Package vdom provides the server-side DOM that docwidget controllers act on.
//
// The widget's markup lives on the server as a tree of VNodes. Handlers look
// elements up by id, toggle classes and attributes, insert feedback nodes and
// replace container contents; the tree is then rendered to HTML (see package
// render) and pushed to the browser.
//
// # Core Types
//
// VNode is the building block representing elements, text, fragments and raw
// HTML. Props holds attributes. Keys starting with "_" are internal: they are
// kept on the node (for example a file selection) but never rendered.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("modal fade"), ID("documentModal"),
//	    H5(Text("Documents")),
//	    Button(ID("uploadDocumentsBtn"), Type("button"), Text("Upload")),
//	)
//
// # Document
//
// Document wraps a root node and adds id lookup and structural mutation
// (InsertAfter, Remove, Append). It does not validate ids for uniqueness;
// the first match in document order wins, as in a browser.
package vdom
