package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (DW001-DW099)
	// ============================================

	"DW001": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No docwidget.json or docwidget.yaml was found at the given location.",
	},
	"DW002": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"DW003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is missing or out of range.",
	},

	// ============================================
	// Validation Errors (DW100-DW199)
	// ============================================

	"DW101": {
		Category: CategoryValidation,
		Message:  "File too large",
		Detail:   "The selected file exceeds the configured maximum size.",
	},
	"DW102": {
		Category: CategoryValidation,
		Message:  "Invalid file type",
		Detail:   "The selected file's extension is not in the allow-list.",
	},
	"DW103": {
		Category: CategoryValidation,
		Message:  "No files selected",
		Detail:   "At least one document type must have a selected file before uploading.",
	},

	// ============================================
	// Endpoint Errors (DW200-DW299)
	// ============================================

	"DW201": {
		Category: CategoryEndpoint,
		Message:  "Upload request failed",
		Detail:   "The upload endpoint could not be reached or answered with a non-2xx status.",
	},
	"DW202": {
		Category: CategoryEndpoint,
		Message:  "Upload rejected by server",
		Detail:   "The upload endpoint answered with success=false.",
	},
	"DW203": {
		Category: CategoryEndpoint,
		Message:  "Document fetch failed",
		Detail:   "Existing documents could not be loaded from the upload endpoint.",
	},
	"DW204": {
		Category: CategoryEndpoint,
		Message:  "File URL could not be built",
		Detail:   "The file resolver could not produce a preview or download URL.",
	},

	// ============================================
	// Dispatch Errors (DW300-DW399)
	// ============================================

	"DW301": {
		Category: CategoryDispatch,
		Message:  "Unknown action",
		Detail:   "No handler is registered for the resolved action.",
	},
	"DW302": {
		Category: CategoryDispatch,
		Message:  "Element not found",
		Detail:   "An element required by the widget is missing from the document.",
	},

	// ============================================
	// Server Errors (DW400-DW499)
	// ============================================

	"DW401": {
		Category: CategoryServer,
		Message:  "Session not found",
		Detail:   "The session cookie is missing, invalid or the session has expired.",
	},
	"DW402": {
		Category: CategoryServer,
		Message:  "Invalid event payload",
		Detail:   "The event could not be decoded.",
	},
	"DW403": {
		Category: CategoryServer,
		Message:  "Temp selection not found",
		Detail:   "The temp_id does not reference a staged file.",
	},

	// ============================================
	// CLI Errors (DW500-DW599)
	// ============================================

	"DW501": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command line flag could not be parsed.",
	},
	"DW502": {
		Category: CategoryCLI,
		Message:  "Validation failed",
		Detail:   "One or more files did not pass validation.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
