// Package server hosts the document widget over HTTP.
//
// Each visit to a documents page creates a session that owns one widget
// controller and its virtual document. The browser's thin client reports
// events either over a WebSocket or by POSTing them; the server answers with
// messages the client applies:
//
//	render  replace the element with the given id by new HTML
//	event   dispatch a CustomEvent (notices)
//	reload  reload the page
//	click   click a transient anchor (downloads)
//
// Routes:
//
//	GET  /documents/{nik}?name=  host page, sets the session cookie
//	POST /files                  stage a selected file, returns its temp_id
//	POST /events                 dispatch one event, returns pending messages
//	GET  /ws                     the same exchange over a WebSocket
//	GET  /client.js              thin client
//	GET  /metrics                Prometheus, when configured
//	GET  /healthz                liveness
package server
