package api

import (
	"maps"
	"net/textproto"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jonnyholland/ComposableArchitecturePattern/environment"
)

// DefaultTimeout is the request timeout of descriptors that set none.
const DefaultTimeout = 60 * time.Second

// QueryItem is one ordered query parameter.
type QueryItem struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Value string `yaml:"value" mapstructure:"value"`
}

// Descriptor describes one logical endpoint. It is immutable once built.
// Construct it with New; the zero value is not usable.
type Descriptor struct {
	id          string
	environment *environment.Environment
	path        string
	headers     map[string]string
	queries     []QueryItem
	body        any
	methods     []Method
	kinds       []ResponseKind
	timeout     time.Duration
	strictEnv   bool
}

// Option configures a Descriptor during construction.
type Option func(*Descriptor)

// WithID overrides the generated identity.
func WithID(id string) Option {
	return func(d *Descriptor) { d.id = id }
}

// WithEnvironment pins the descriptor to an environment. Without it the
// caller's environment is used.
func WithEnvironment(env environment.Environment) Option {
	return func(d *Descriptor) { d.environment = &env }
}

// WithHeaders sets default headers.
func WithHeaders(headers map[string]string) Option {
	return func(d *Descriptor) {
		d.headers = make(map[string]string, len(headers))
		for k, v := range headers {
			d.headers[textproto.CanonicalMIMEHeaderKey(k)] = v
		}
	}
}

// WithQueries sets default query items.
func WithQueries(items ...QueryItem) Option {
	return func(d *Descriptor) { d.queries = slices.Clone(items) }
}

// WithBody sets the default body.
func WithBody(body any) Option {
	return func(d *Descriptor) { d.body = body }
}

// WithMethods sets the supported HTTP methods.
func WithMethods(methods ...Method) Option {
	return func(d *Descriptor) { d.methods = slices.Clone(methods) }
}

// WithResponseKinds declares the result kinds the endpoint can be decoded into.
func WithResponseKinds(kinds ...ResponseKind) Option {
	return func(d *Descriptor) { d.kinds = slices.Clone(kinds) }
}

// WithTimeout sets the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Descriptor) { d.timeout = timeout }
}

// WithStrictEnvironment makes a caller environment that differs from the
// descriptor's a hard error.
func WithStrictEnvironment(strict bool) Option {
	return func(d *Descriptor) { d.strictEnv = strict }
}

// New creates a descriptor for path. It supports GET only unless
// WithMethods says otherwise.
func New(path string, opts ...Option) *Descriptor {
	d := &Descriptor{
		id:      uuid.NewString(),
		path:    path,
		methods: []Method{MethodGet},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	return d
}

// ID returns the descriptor's identity.
func (d *Descriptor) ID() string { return d.id }

// Path returns the relative path (possibly a URI template).
func (d *Descriptor) Path() string { return d.path }

// Environment returns the pinned environment, or nil.
func (d *Descriptor) Environment() *environment.Environment {
	if d.environment == nil {
		return nil
	}
	env := *d.environment
	return &env
}

// Headers returns a copy of the default headers.
func (d *Descriptor) Headers() map[string]string { return maps.Clone(d.headers) }

// Queries returns a copy of the default query items.
func (d *Descriptor) Queries() []QueryItem { return slices.Clone(d.queries) }

// Body returns the default body.
func (d *Descriptor) Body() any { return d.body }

// Methods returns a copy of the supported methods.
func (d *Descriptor) Methods() []Method { return slices.Clone(d.methods) }

// ResponseKinds returns a copy of the supported response kinds.
func (d *Descriptor) ResponseKinds() []ResponseKind { return slices.Clone(d.kinds) }

// Timeout returns the default timeout.
func (d *Descriptor) Timeout() time.Duration { return d.timeout }

// StrictEnvironment reports whether environment mismatches are errors.
func (d *Descriptor) StrictEnvironment() bool { return d.strictEnv }

// SupportsMethod reports whether m is declared.
func (d *Descriptor) SupportsMethod(m Method) bool { return slices.Contains(d.methods, m) }

// Supports reports whether kind is declared.
func (d *Descriptor) Supports(kind ResponseKind) bool { return slices.Contains(d.kinds, kind) }

// Equal reports identity equality.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.id == other.id
}

// IsEqual reports structural equality, ignoring identity. Response kinds
// match when both sets are empty or they share at least one kind.
func (d *Descriptor) IsEqual(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if !sameEnvironment(d.environment, other.environment) {
		return false
	}
	if d.path != other.path || d.timeout != other.timeout {
		return false
	}
	if !maps.Equal(d.headers, other.headers) || !slices.Equal(d.queries, other.queries) {
		return false
	}
	if !reflect.DeepEqual(d.body, other.body) {
		return false
	}
	if !sameSet(d.methods, other.methods) {
		return false
	}
	return kindsOverlap(d.kinds, other.kinds)
}

func sameEnvironment(a, b *environment.Environment) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameSet[T comparable](a, b []T) bool {
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	for _, v := range b {
		if !slices.Contains(a, v) {
			return false
		}
	}
	return true
}

func kindsOverlap(a, b []ResponseKind) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	for _, k := range a {
		if slices.Contains(b, k) {
			return true
		}
	}
	return false
}
