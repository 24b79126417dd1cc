// Package errors defines the failure taxonomy of the request pipeline.
//
// Every failure the pipeline surfaces is an *Error carrying a Kind (the
// coarse classification callers branch on) and a Code (the precise reason).
// Transport-level failures are classified from HTTP status codes with
// ClassifyStatusCode; decode failures carry the coding path when one can be
// derived from a structural decode error.
package errors
