package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error is the single concrete failure type of the pipeline.
type Error struct {
	// Kind classifies the failure.
	Kind Kind `json:"kind"`
	// Code is the precise reason.
	Code ErrorCode `json:"code"`
	// Message describes the failure.
	Message string `json:"message"`
	// StatusCode is the HTTP status (0 when no response was received).
	StatusCode int `json:"status_code,omitempty"`
	// CodingPath locates a structural decode failure ("user.age").
	CodingPath string `json:"coding_path,omitempty"`
	// Body is the response body that accompanied the failure, if any.
	Body []byte `json:"-"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	if e.CodingPath != "" {
		msg += " at " + e.CodingPath
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by kind and, when the target sets one, by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithCause sets the underlying cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// New creates an Error of the given kind and code.
func New(kind Kind, code ErrorCode, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// --- Constructors ---

// BadRequest creates a KindBadRequest error.
func BadRequest(code ErrorCode, message string) *Error {
	return New(KindBadRequest, code, message)
}

// UnsupportedMethod reports a method the descriptor does not declare.
func UnsupportedMethod(method string) *Error {
	return BadRequest(ErrCodeUnsupportedMethod, fmt.Sprintf("method %s is not supported by this API", method))
}

// UnsupportedAPI reports a descriptor not registered with the server.
func UnsupportedAPI(path string) *Error {
	return BadRequest(ErrCodeUnsupportedAPI, fmt.Sprintf("API %q is not registered with this server", path))
}

// UnsupportedType reports a response kind the descriptor does not declare.
func UnsupportedType(kind string) *Error {
	return BadRequest(ErrCodeUnsupportedType, fmt.Sprintf("response type %s is not supported by this API", kind))
}

// Unauthenticated reports that no usable credential is available.
func Unauthenticated(reason string) *Error {
	if reason == "" {
		reason = "no valid credential available"
	}
	return New(KindUnauthorized, ErrCodeUnauthenticated, reason)
}

// Network wraps a transient transport failure.
func Network(cause error) *Error {
	msg := "transport failure"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: KindNetwork, Code: ErrCodeTransport, Message: msg, Cause: cause}
}

// Server creates a 5xx error.
func Server(statusCode int, body []byte) *Error {
	return &Error{
		Kind: KindServer, Code: ErrCodeHTTPStatus, StatusCode: statusCode,
		Message: http.StatusText(statusCode), Body: body,
	}
}

// EmptyResponse reports a missing body where one was required.
func EmptyResponse() *Error {
	return New(KindEmptyResponse, ErrCodeEmptyResponse, "response body is empty")
}

// Cancelled wraps a cancellation observed by the pipeline.
func Cancelled(cause error) *Error {
	return &Error{Kind: KindCancelled, Code: ErrCodeCancelled, Message: "call cancelled", Cause: cause}
}

// Unknown wraps an unclassified failure.
func Unknown(cause error) *Error {
	msg := "unclassified failure"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: KindUnknown, Code: ErrCodeUnknown, Message: msg, Cause: cause}
}

// --- Inspection ---

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err. Errors outside the taxonomy are KindUnknown.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// IsBadRequest checks if err is a KindBadRequest error.
func IsBadRequest(err error) bool { return isKind(err, KindBadRequest) }

// IsUnauthorized checks if err is a KindUnauthorized error.
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }

// IsNetwork checks if err is a KindNetwork error.
func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

// IsServer checks if err is a KindServer error.
func IsServer(err error) bool { return isKind(err, KindServer) }

// IsEmptyResponse checks if err is a KindEmptyResponse error.
func IsEmptyResponse(err error) bool { return isKind(err, KindEmptyResponse) }

// IsDecodeFailure checks if err is a KindDecodeFailure error.
func IsDecodeFailure(err error) bool { return isKind(err, KindDecodeFailure) }

// IsCancelled checks if err is a KindCancelled error.
func IsCancelled(err error) bool { return isKind(err, KindCancelled) }

func isKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}
