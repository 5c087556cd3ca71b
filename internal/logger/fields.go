package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried in the context through a request.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
)

// Prediction fields.
const (
	FieldLabel      = "label"
	FieldConfidence = "confidence"
	FieldClassIndex = "class_index"
	FieldFormat     = "format"
	FieldWidth      = "width"
	FieldHeight     = "height"
	FieldNutrition  = "nutrition_hit"
	FieldHealth     = "health_hit"
	FieldEngine     = "engine"
)

// Metric fields, attached per entry for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the HTTP status or operation status
	FieldStatus = "status"
)
