// Package upload holds everything the document widget needs to move files:
// client-side validation rules, the client for the external upload endpoint,
// file URL resolvers for previews and downloads, and a temp store that stages
// browser selections on disk until they are forwarded.
//
// # Validation
//
//	rules := upload.Rules{MaxFileSize: 2 << 20, AllowedExtensions: []string{"pdf", "jpg"}}
//	if err := rules.Validate("ktp.png", 3_000_000); err != nil {
//	    // File size (2.86MB) exceeds the maximum limit of 2MB
//	}
//
// # Endpoint
//
// The upload endpoint is an external service and speaks two calls:
//
//	GET  ?action=get_documents&nik=<id>   -> {"success":true,"data":{"ktp":"uploads/ktp/a.pdf","kk":null}}
//	POST multipart action=upload + fields -> {"success":true,"message":"..."}
//
// Client treats a non-2xx status and success=false the same way: both are
// returned as errors.
//
// # Selections
//
// The host page posts each selected file to a SelectionHandler, which saves it
// in a Store and answers with a temp_id. The widget claims the temp file when
// the change event arrives and keeps it until the upload is done.
package upload
