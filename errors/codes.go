package errors

// Kind is the coarse classification of a pipeline failure.
type Kind int

const (
	// KindUnknown is an unclassified failure or informational HTTP status.
	KindUnknown Kind = iota
	// KindBadRequest covers unsupported methods/types, unregistered descriptors
	// and malformed environments.
	KindBadRequest
	// KindUnauthorized covers authentication and refresh failures and 401 responses.
	KindUnauthorized
	// KindNetwork covers transient transport failures and 4xx other than 401.
	KindNetwork
	// KindServer covers 5xx responses.
	KindServer
	// KindEmptyResponse means a body was required but none was returned.
	KindEmptyResponse
	// KindDecodeFailure means the body could not be deserialized.
	KindDecodeFailure
	// KindCancelled means the caller cancelled the call.
	KindCancelled
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindEmptyResponse:
		return "empty_response"
	case KindDecodeFailure:
		return "decode_failure"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ErrorCode is a machine-readable reason refining a Kind.
type ErrorCode string

// Validation and build errors (KindBadRequest)
const (
	ErrCodeUnsupportedMethod       ErrorCode = "UNSUPPORTED_METHOD"
	ErrCodeUnsupportedAPI          ErrorCode = "UNSUPPORTED_API"
	ErrCodeUnsupportedType         ErrorCode = "UNSUPPORTED_TYPE"
	ErrCodeEnvironmentMismatch     ErrorCode = "ENVIRONMENT_MISMATCH"
	ErrCodeMissingEnvironment      ErrorCode = "MISSING_ENVIRONMENT"
	ErrCodeUnresolvableEnvironment ErrorCode = "UNRESOLVABLE_ENVIRONMENT"
	ErrCodeInvalidPath             ErrorCode = "INVALID_PATH"
	ErrCodeEncodeFailed            ErrorCode = "ENCODE_FAILED"
	ErrCodeInvalidConfig           ErrorCode = "INVALID_CONFIG"
)

// Authentication errors (KindUnauthorized)
const (
	// ErrCodeUnauthenticated means no valid or refreshable credential is available.
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
)

// Transport and response errors
const (
	// ErrCodeHTTPStatus means the failure was derived from a non-2xx status code.
	ErrCodeHTTPStatus ErrorCode = "HTTP_STATUS"
	// ErrCodeTransport means the round trip itself failed (DNS, refused, reset).
	ErrCodeTransport ErrorCode = "TRANSPORT"
	ErrCodeEmptyResponse ErrorCode = "EMPTY_RESPONSE"
	ErrCodeDecodeFailed  ErrorCode = "DECODE_FAILED"
	ErrCodeCancelled     ErrorCode = "CANCELLED"
	ErrCodeUnknown       ErrorCode = "UNKNOWN"
)
