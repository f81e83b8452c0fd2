// Package config loads docwidget.json or docwidget.yaml.
//
// A minimal file only names the endpoints:
//
//	{
//	  "uploadEndpoint": "https://backoffice.example.com/api/jamaah_documents.php",
//	  "fileEndpoint": "https://backoffice.example.com/api/serve_document.php"
//	}
//
// Everything else has a default. The YAML form uses the same keys and is
// decoded strictly: unknown keys are an error.
//
// DOCWIDGET_UPLOAD_ENDPOINT, DOCWIDGET_FILE_ENDPOINT and DOCWIDGET_ADDR
// override the file.
package config
