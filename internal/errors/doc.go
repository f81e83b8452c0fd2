// Package errors provides coded, structured errors for docwidget.
//
// Every failure that crosses a package boundary inside the widget runtime
// carries a code from the registry:
//   - DW0xx: configuration (missing file, parse failure, invalid values)
//   - DW1xx: validation (file too large, unsupported type, nothing selected)
//   - DW2xx: upload/file endpoints (transport, HTTP status, rejected upload)
//   - DW3xx: dispatch (unknown action, missing DOM element)
//   - DW4xx: host server (session, event payload, temp selections)
//
// # Usage
//
//	err := errors.New("DW202").
//	    WithDetail("server said: quota exceeded").
//	    Wrap(cause)
//
//	fmt.Fprintln(os.Stderr, err.Format())
//
// WidgetError implements Unwrap, so errors.Is and errors.As from the standard
// library work through it.
package errors
