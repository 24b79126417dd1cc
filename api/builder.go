package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/jtacoma/uritemplates"

	"github.com/jonnyholland/ComposableArchitecturePattern/environment"
	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
)

// Overrides are the per-call adjustments applied on top of a descriptor.
type Overrides struct {
	// Endpoint is appended to the descriptor path.
	Endpoint string
	// PathParams expand a templated descriptor path ("/users/{id}").
	PathParams map[string]any
	// Environment is the caller's environment, used when the descriptor pins none.
	Environment *environment.Environment
	// Headers overlay the descriptor headers.
	Headers map[string]string
	// Queries are written before the descriptor queries. Both are sent when
	// names repeat.
	Queries []QueryItem
	// Body replaces the descriptor body. []byte, json.RawMessage, io.Reader
	// and ContentBody values are sent as is; anything else, strings
	// included, goes through the Encoder.
	Body any
	// Timeout replaces the descriptor timeout when positive.
	Timeout time.Duration
}

// ContentBody is a body that knows its own encoding, such as a multipart form.
type ContentBody interface {
	Bytes() []byte
	ContentType() string
}

// Encoder serializes structured bodies.
type Encoder interface {
	Encode(v any) (data []byte, contentType string, err error)
}

// JSONEncoder encodes bodies as JSON. time.Time values are written in
// RFC 3339 (ISO-8601).
type JSONEncoder struct{}

// Encode implements Encoder.
func (JSONEncoder) Encode(v any) ([]byte, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json", nil
}

// Builder composes descriptors and overrides into requests.
type Builder struct {
	// Encoder serializes non-raw bodies. Defaults to JSONEncoder.
	Encoder Encoder
}

// Build composes a request with the default builder.
func Build(method Method, d *Descriptor, o Overrides) (Request, error) {
	return Builder{}.Build(method, d, o)
}

// Build composes a descriptor and overrides into a concrete request. The
// descriptor is never modified.
func (b Builder) Build(method Method, d *Descriptor, o Overrides) (Request, error) {
	if d == nil {
		return Request{}, errors.UnsupportedAPI("<nil>")
	}
	if !d.SupportsMethod(method) {
		return Request{}, errors.UnsupportedMethod(string(method))
	}

	base, err := resolveBase(d, o.Environment)
	if err != nil {
		return Request{}, err
	}

	path, err := expandPath(d.path, o.PathParams)
	if err != nil {
		return Request{}, err
	}
	path, templateQuery, _ := strings.Cut(path, "?")
	u := joinURL(base, path, o.Endpoint)
	u.RawQuery = encodeQuery(joinQuery(u.RawQuery, templateQuery), o.Queries, d.queries)

	header := make(map[string]string, len(d.headers)+len(o.Headers))
	for k, v := range d.headers {
		header[k] = v
	}
	for k, v := range o.Headers {
		header[textproto.CanonicalMIMEHeaderKey(k)] = v
	}

	payload := o.Body
	if payload == nil {
		payload = d.body
	}
	body, contentType, err := b.encodeBody(payload)
	if err != nil {
		return Request{}, errors.BadRequest(errors.ErrCodeEncodeFailed, "body could not be encoded").WithCause(err)
	}
	if contentType != "" {
		if _, ok := header["Content-Type"]; !ok {
			header["Content-Type"] = contentType
		}
	}

	timeout := d.timeout
	if o.Timeout > 0 {
		timeout = o.Timeout
	}

	return Request{
		URL:     u,
		Method:  method,
		Header:  header,
		Body:    body,
		Timeout: timeout,
	}, nil
}

func resolveBase(d *Descriptor, caller *environment.Environment) (*url.URL, error) {
	if d.strictEnv && d.environment != nil && caller != nil && !d.environment.Equal(*caller) {
		return nil, errors.BadRequest(errors.ErrCodeEnvironmentMismatch,
			fmt.Sprintf("API is pinned to %s but the call targets %s", d.environment, caller))
	}

	env := d.environment
	if env == nil {
		env = caller
	}
	if env == nil {
		return nil, errors.BadRequest(errors.ErrCodeMissingEnvironment, "neither the API nor the call specifies an environment")
	}

	base, ok := env.BaseURL()
	if !ok {
		return nil, errors.BadRequest(errors.ErrCodeUnresolvableEnvironment,
			fmt.Sprintf("environment %s does not resolve to an absolute URL", env))
	}
	return base, nil
}

func expandPath(path string, params map[string]any) (string, error) {
	if !strings.Contains(path, "{") {
		return path, nil
	}
	tmpl, err := uritemplates.Parse(path)
	if err != nil {
		return "", errors.BadRequest(errors.ErrCodeInvalidPath, fmt.Sprintf("path template %q is invalid", path)).WithCause(err)
	}
	vars := make(map[string]interface{}, len(params))
	for k, v := range params {
		switch v.(type) {
		case string, []string, []interface{}, map[string]interface{}, map[string]string:
			vars[k] = v
		default:
			vars[k] = fmt.Sprint(v)
		}
	}
	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return "", errors.BadRequest(errors.ErrCodeInvalidPath, fmt.Sprintf("path template %q could not be expanded", path)).WithCause(err)
	}
	return expanded, nil
}

func joinURL(base *url.URL, parts ...string) *url.URL {
	u := *base
	segments := []string{strings.TrimSuffix(base.Path, "/")}
	trailing := false
	for _, p := range parts {
		if p == "" {
			continue
		}
		segments = append(segments, strings.Trim(p, "/"))
		trailing = strings.HasSuffix(p, "/")
	}
	if len(segments) == 1 {
		return &u
	}
	joined := strings.Join(segments, "/")
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	if trailing {
		joined += "/"
	}
	u.Path = joined
	u.RawPath = ""
	return &u
}

func joinQuery(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "&" + b
}

// encodeQuery keeps the base URL's query, then writes every caller item,
// then every descriptor item. Repeated names are all sent.
func encodeQuery(existing string, caller, defaults []QueryItem) string {
	var sb strings.Builder
	sb.WriteString(existing)
	write := func(item QueryItem) {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(item.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(item.Value))
	}

	for _, item := range caller {
		write(item)
	}
	for _, item := range defaults {
		write(item)
	}
	return sb.String()
}

func (b Builder) encodeBody(v any) ([]byte, string, error) {
	switch body := v.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return body, "", nil
	case json.RawMessage:
		return []byte(body), "application/json", nil
	case ContentBody:
		return body.Bytes(), body.ContentType(), nil
	case io.Reader:
		data, err := io.ReadAll(body)
		return data, "", err
	}
	enc := b.Encoder
	if enc == nil {
		enc = JSONEncoder{}
	}
	return enc.Encode(v)
}
