package errors

// ErrorCode identifies the category of an AppError.
type ErrorCode int

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_NOT_FOUND
	ErrorCode_UNAUTHENTICATED
	ErrorCode_PERMISSION_DENIED

	ErrorCode_MEETING_NOT_FOUND
	ErrorCode_MEETING_ALREADY_PROCESSING
	ErrorCode_MISSING_RECORDING_URL

	ErrorCode_AI_TRANSCRIPTION_FAILED

	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_DB_QUERY_FAILED

	ErrorCode_HTTP_OK ErrorCode = 200
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_PERMISSION_DENIED:          "PERMISSION_DENIED",
	ErrorCode_MEETING_NOT_FOUND:          "MEETING_NOT_FOUND",
	ErrorCode_MEETING_ALREADY_PROCESSING: "MEETING_ALREADY_PROCESSING",
	ErrorCode_MISSING_RECORDING_URL:      "MISSING_RECORDING_URL",
	ErrorCode_AI_TRANSCRIPTION_FAILED:    "AI_TRANSCRIPTION_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_HTTP_OK:                    "HTTP_OK",
}

// String returns the stable wire name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
