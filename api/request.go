package api

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/textproto"
	"net/url"
	"slices"
	"time"
)

// Request is a concrete wire request. Methods returning a Request never
// modify the receiver.
type Request struct {
	// URL is the resolved absolute URL including the query.
	URL *url.URL
	// Method is the HTTP method.
	Method Method
	// Header holds single-valued headers keyed canonically.
	Header map[string]string
	// Body is the encoded body (nil for none).
	Body []byte
	// Timeout is the per-request timeout the courier should honor.
	Timeout time.Duration
}

// Clone returns a deep copy.
func (r Request) Clone() Request {
	out := r
	if r.URL != nil {
		u := *r.URL
		if r.URL.User != nil {
			user := *r.URL.User
			u.User = &user
		}
		out.URL = &u
	}
	out.Header = maps.Clone(r.Header)
	if out.Header == nil {
		out.Header = make(map[string]string)
	}
	out.Body = slices.Clone(r.Body)
	return out
}

// WithHeader returns a copy with key set to value.
func (r Request) WithHeader(key, value string) Request {
	out := r.Clone()
	out.Header[textproto.CanonicalMIMEHeaderKey(key)] = value
	return out
}

// WithHeaders returns a copy with all headers set; later values win.
func (r Request) WithHeaders(headers map[string]string) Request {
	out := r.Clone()
	for k, v := range headers {
		out.Header[textproto.CanonicalMIMEHeaderKey(k)] = v
	}
	return out
}

// HeaderValue returns the header value for key.
func (r Request) HeaderValue(key string) string {
	return r.Header[textproto.CanonicalMIMEHeaderKey(key)]
}

// String returns "METHOD url".
func (r Request) String() string {
	if r.URL == nil {
		return string(r.Method)
	}
	return fmt.Sprintf("%s %s", r.Method, r.URL.String())
}

// HTTPRequest converts r into a net/http request bound to ctx.
func (r Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	if r.URL == nil {
		return nil, fmt.Errorf("api: request has no URL")
	}
	var body *bytes.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, string(r.Method), r.URL.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, string(r.Method), r.URL.String(), nil)
	}
	if err != nil {
		return nil, err
	}
	for k, v := range r.Header {
		req.Header.Set(k, v)
	}
	return req, nil
}
