package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrNotFound = ErrorResponse{
		Status: "error",
		Error:  "not_found",
	}
)

// Коды ошибок по видам apierr
const (
	CodeValidation = "validation_failed"
	CodeTransport  = "upstream_unavailable"
	CodeServer     = "upstream_error"
	CodeStale      = "superseded"
	CodeInFlight   = "in_flight"
	CodeInternal   = "internal_error"
)
