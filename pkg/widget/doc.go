// Package widget implements the document upload widget controller.
//
// The widget's DOM is a vdom.Document owned by a Controller. Browser events
// are fed to Controller.Dispatch, which resolves them to an Action through a
// dispatch table and runs the action handler behind the configured
// middleware. Handlers mutate the document; the host re-renders it after
// Dispatch returns, or from the OnChange hook while an upload is in flight.
//
// # Actions
//
//	open-documents  click on a trigger carrying data-nik and data-name
//	select-file     change on a document-type file input
//	upload          click on #uploadDocumentsBtn
//	submit          submit of #documentForm
//	preview         click on a preview button (data-path, data-type)
//	download        click on a download button
//	modal-hidden    hidden event of #documentModal
//	ack             acknowledgement of a notice
//
// # Concurrency
//
// The controller mutex stands in for the browser's UI thread: Dispatch and
// timer callbacks hold it while touching the document. Calls to the upload
// endpoint run with the lock released, so progress ticks keep animating the
// bar during an upload.
//
// # Example
//
//	page := widget.BuildPage(cfg, widget.PageData{
//	    Jamaah: []widget.Jamaah{{NIK: "3201", Name: "Siti"}},
//	})
//	ctrl, err := widget.New(vdom.NewDocument(page), cfg, widget.Deps{
//	    Endpoint: client,
//	    Resolver: files,
//	    Notifier: notifier,
//	    Browser:  browser,
//	})
//	err = ctrl.Dispatch(ctx, widget.Event{Type: "click", Target: widget.TriggerID("3201")})
package widget
