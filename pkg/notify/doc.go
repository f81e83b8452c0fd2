// Package notify delivers user-facing notices for the document widget.
//
// Notices leave the server as custom events through an Emitter (the host
// session), so the browser side decides how they look. Two notifiers exist:
//
//   - Modal emits "docwidget:modal" with level, title, message and optional
//     rendered HTML body. The page script shows it with a rich modal library.
//   - Alert emits "docwidget:alert" with plain text for window.alert.
//
// Which one is used is a configuration choice (see New), not something the
// page detects at runtime.
//
// # Acknowledgement
//
// Every notice gets an id. When the user dismisses it the browser sends an
// ack event carrying that id and the notice's OnAck callback runs once:
//
//	n.Show(notify.Notice{
//	    Level:   notify.LevelSuccess,
//	    Title:   "Upload complete",
//	    Message: "Documents uploaded successfully",
//	    OnAck:   browser.Reload,
//	})
//
// WithAutoAck acknowledges each notice as soon as it is emitted, for
// headless runs where nobody clicks OK.
package notify
