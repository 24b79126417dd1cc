package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ClassifyStatusCode converts an HTTP status code into a typed error.
// Returns nil for 2xx status codes.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized:
		return &Error{
			Kind: KindUnauthorized, Code: ErrCodeHTTPStatus, StatusCode: statusCode,
			Message: http.StatusText(statusCode), Body: body,
		}
	case statusCode >= 400 && statusCode < 500:
		return &Error{
			Kind: KindNetwork, Code: ErrCodeHTTPStatus, StatusCode: statusCode,
			Message: http.StatusText(statusCode), Body: body,
		}
	case statusCode >= 500 && statusCode < 600:
		return Server(statusCode, body)
	default:
		return &Error{
			Kind: KindUnknown, Code: ErrCodeHTTPStatus, StatusCode: statusCode,
			Message: fmt.Sprintf("HTTP %d", statusCode), Body: body,
		}
	}
}

// Decode wraps a deserialization error. Structural failures keep the
// coding path of the offending field; syntax and custom unmarshaler
// failures carry none.
func Decode(cause error) *Error {
	e := &Error{Kind: KindDecodeFailure, Code: ErrCodeDecodeFailed, Message: "response could not be decoded", Cause: cause}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(cause, &typeErr) {
		e.CodingPath = typeErr.Field
		e.Message = fmt.Sprintf("cannot decode %s into %s", typeErr.Value, typeErr.Type)
		return e
	}
	var syntaxErr *json.SyntaxError
	if stderrors.As(cause, &syntaxErr) {
		e.Message = fmt.Sprintf("malformed body at offset %d", syntaxErr.Offset)
	}
	return e
}
