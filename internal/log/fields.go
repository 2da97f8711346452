package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldContributorID = "contributor_id"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldReportKind    = "report_kind"
	FieldRecordCount   = "record_count"
)

// Standard component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStorage  = "storage"
	ComponentService  = "service"
	ComponentReport   = "report"
	ComponentAMQP     = "amqp"
	ComponentExporter = "exporter"
)
