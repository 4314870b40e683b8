package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldConversionID = "conversion_id"
	FieldLinkID       = "link_id"
	FieldClientID     = "client_id"
	FieldClientName   = "client_name"
	FieldTimeframe    = "timeframe"
	FieldAmount       = "amount"
	FieldCommission   = "commission"
	FieldStatus       = "status"
	FieldSheetsRef    = "sheets_ref"
	FieldRowCount     = "row_count"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentConversion = "conversion"
	ComponentDashboard  = "dashboard"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
	ComponentImporter   = "importer"
	ComponentReconcile  = "reconcile"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpDelete    = "delete"
	OpList      = "list"
	OpSync      = "sync"
	OpImport    = "import"
	OpReconcile = "reconcile"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)
