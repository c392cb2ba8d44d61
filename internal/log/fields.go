package log

// Attribute keys shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMessageID  = "message_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldFeeID      = "fee_id"
	FieldClassName  = "class_name"
	FieldCategory   = "category"
	FieldTotal      = "total_annual"
	FieldVersion    = "version"
	FieldCount      = "count"
	FieldSheetRow   = "sheet_row"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentFees      = "fees"
	ComponentAlumni    = "alumni"
	ComponentGallery   = "gallery"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
)

const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSummary  = "summary"
	OpSync     = "sync"
	OpPublish  = "publish"
	OpSweep    = "sweep"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Fields accumulates attributes in insertion order.
type Fields []any

// NewFields starts an empty attribute list.
func NewFields() Fields { return make(Fields, 0, 8) }

func (f Fields) add(k string, v any) Fields { return append(f, k, v) }

func (f Fields) Component(c string) Fields { return f.add(FieldComponent, c) }
func (f Fields) Operation(op string) Fields { return f.add(FieldOperation, op) }
func (f Fields) RequestID(id string) Fields { return f.add(FieldRequestID, id) }
func (f Fields) ClientIP(ip string) Fields { return f.add(FieldClientIP, ip) }

// Err adds the error text; a nil error adds nothing.
func (f Fields) Err(err error) Fields {
	if err == nil {
		return f
	}
	return f.add(FieldError, err.Error())
}

// Fee adds the identifying attributes of a fee record.
func (f Fields) Fee(id int64, className, category string) Fields {
	return f.add(FieldFeeID, id).add(FieldClassName, className).add(FieldCategory, category)
}

// Request adds the method, path and query of an HTTP request.
func (f Fields) Request(method, path, query string) Fields {
	return f.add(FieldMethod, method).add(FieldPath, path).add(FieldQuery, query)
}

// Response adds status and elapsed milliseconds.
func (f Fields) Response(status int, durationMs int64) Fields {
	return f.add(FieldStatusCode, status).add(FieldDuration, durationMs)
}

// Args returns the list in the form slog expects.
func (f Fields) Args() []any { return f }
