package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonnyholland/ComposableArchitecturePattern/environment"
	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
)

func envPtr(e environment.Environment) *environment.Environment { return &e }

func requireCode(t *testing.T, err error, code errors.ErrorCode) *errors.Error {
	t.Helper()
	e, ok := errors.AsError(err)
	require.True(t, ok, "expected %s, got %v", code, err)
	require.Equal(t, code, e.Code)
	return e
}

func TestBuild_UnsupportedMethod(t *testing.T) {
	d := New("/users", WithEnvironment(environment.Prod("https://api.example.com")))

	_, err := Build(MethodPost, d, Overrides{})
	require.True(t, errors.IsBadRequest(err), "expected bad request, got %v", err)
	requireCode(t, err, errors.ErrCodeUnsupportedMethod)
}

func TestBuild_EnvironmentResolution(t *testing.T) {
	prod := environment.Prod("https://api.example.com")
	dev := environment.Dev("https://dev.example.com")

	tests := []struct {
		name     string
		desc     *Descriptor
		caller   *environment.Environment
		wantHost string
		wantCode errors.ErrorCode
	}{
		{"descriptor wins", New("/a", WithEnvironment(prod)), envPtr(dev), "api.example.com", ""},
		{"caller fallback", New("/a"), envPtr(dev), "dev.example.com", ""},
		{"strict mismatch", New("/a", WithEnvironment(prod), WithStrictEnvironment(true)), envPtr(dev), "", errors.ErrCodeEnvironmentMismatch},
		{"strict same", New("/a", WithEnvironment(prod), WithStrictEnvironment(true)), envPtr(prod), "api.example.com", ""},
		{"strict nil caller", New("/a", WithEnvironment(prod), WithStrictEnvironment(true)), nil, "api.example.com", ""},
		{"missing", New("/a"), nil, "", errors.ErrCodeMissingEnvironment},
		{"unresolvable", New("/a", WithEnvironment(environment.Prod("not a url"))), nil, "", errors.ErrCodeUnresolvableEnvironment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Build(MethodGet, tt.desc, Overrides{Environment: tt.caller})
			if tt.wantCode != "" {
				e := requireCode(t, err, tt.wantCode)
				assert.Equal(t, errors.KindBadRequest, e.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, req.URL.Host)
		})
	}
}

func TestBuild_URLAndQueries(t *testing.T) {
	d := New("/v1/users",
		WithEnvironment(environment.Prod("https://api.example.com/base?key=abc")),
		WithQueries(QueryItem{"limit", "10"}, QueryItem{"sort", "name"}),
	)

	req, err := Build(MethodGet, d, Overrides{
		Endpoint: "active",
		Queries:  []QueryItem{{"sort", "age"}, {"q", "a b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "/base/v1/users/active", req.URL.Path)
	assert.Equal(t, "key=abc&sort=age&q=a+b&limit=10&sort=name", req.URL.RawQuery)
}

func TestBuild_QueriesKeepRepeatedNames(t *testing.T) {
	d := New("/search",
		WithEnvironment(environment.Prod("https://api.example.com")),
		WithQueries(QueryItem{"sort", "name"}, QueryItem{"limit", "10"}),
	)

	req, err := Build(MethodGet, d, Overrides{Queries: []QueryItem{{"sort", "age"}, {"q", "a b"}}})
	require.NoError(t, err)
	assert.Equal(t, "sort=age&q=a+b&sort=name&limit=10", req.URL.RawQuery)
	assert.Equal(t, []string{"age", "name"}, req.URL.Query()["sort"], "caller sort comes first")
}

func TestBuild_NilDescriptor(t *testing.T) {
	_, err := Build(MethodGet, nil, Overrides{})
	requireCode(t, err, errors.ErrCodeUnsupportedAPI)
}

func TestBuild_PathTemplate(t *testing.T) {
	d := New("/users/{id}/posts{?page}", WithEnvironment(environment.Prod("https://api.example.com")))

	req, err := Build(MethodGet, d, Overrides{PathParams: map[string]any{"id": "42", "page": "2"}})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users/42/posts?page=2", req.URL.String())
}

func TestBuild_HeadersMerge(t *testing.T) {
	d := New("/a",
		WithEnvironment(environment.Prod("https://api.example.com")),
		WithHeaders(map[string]string{"accept": "text/plain", "x-client": "cap"}),
	)

	req, err := Build(MethodGet, d, Overrides{Headers: map[string]string{"Accept": "application/json"}})
	require.NoError(t, err)
	assert.Equal(t, "application/json", req.HeaderValue("accept"), "extra header should win")
	assert.Equal(t, "cap", req.Header["X-Client"], "descriptor header lost")
	assert.Equal(t, "text/plain", d.Headers()["Accept"], "descriptor must not be mutated")
}

func TestBuild_Body(t *testing.T) {
	type payload struct {
		Name string    `json:"name"`
		At   time.Time `json:"at"`
	}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env := WithEnvironment(environment.Prod("https://api.example.com"))

	t.Run("structured body is JSON", func(t *testing.T) {
		d := New("/a", env, WithMethods(MethodPost))
		req, err := Build(MethodPost, d, Overrides{Body: payload{Name: "x", At: at}})
		require.NoError(t, err)
		assert.Equal(t, `{"name":"x","at":"2024-03-01T12:00:00Z"}`, string(req.Body))
		assert.Equal(t, "application/json", req.HeaderValue("Content-Type"))
	})

	t.Run("raw bytes pass through", func(t *testing.T) {
		d := New("/a", env, WithMethods(MethodPut), WithBody([]byte("raw")))
		req, err := Build(MethodPut, d, Overrides{})
		require.NoError(t, err)
		assert.Equal(t, "raw", string(req.Body))
		assert.NotContains(t, req.Header, "Content-Type", "raw bytes must not set a content type")
	})

	t.Run("override wins over descriptor", func(t *testing.T) {
		d := New("/a", env, WithMethods(MethodPost), WithBody([]byte("default")))
		req, err := Build(MethodPost, d, Overrides{Body: json.RawMessage(`{"a":1}`)})
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(req.Body))
	})

	t.Run("explicit content type kept", func(t *testing.T) {
		d := New("/a", env, WithMethods(MethodPost),
			WithHeaders(map[string]string{"Content-Type": "application/vnd.api+json"}))
		req, err := Build(MethodPost, d, Overrides{Body: map[string]int{"a": 1}})
		require.NoError(t, err)
		assert.Equal(t, "application/vnd.api+json", req.HeaderValue("Content-Type"))
	})

	t.Run("string is JSON encoded", func(t *testing.T) {
		d := New("/a", env, WithMethods(MethodPost))
		req, err := Build(MethodPost, d, Overrides{Body: "hello"})
		require.NoError(t, err)
		assert.Equal(t, `"hello"`, string(req.Body))
		assert.Equal(t, "application/json", req.HeaderValue("Content-Type"))
	})

	t.Run("reader", func(t *testing.T) {
		d := New("/a", env, WithMethods(MethodPost))
		req, err := Build(MethodPost, d, Overrides{Body: strings.NewReader("streamed")})
		require.NoError(t, err)
		assert.Equal(t, "streamed", string(req.Body))
	})

	t.Run("unencodable", func(t *testing.T) {
		d := New("/a", env, WithMethods(MethodPost))
		_, err := Build(MethodPost, d, Overrides{Body: make(chan int)})
		requireCode(t, err, errors.ErrCodeEncodeFailed)
	})

	t.Run("no body", func(t *testing.T) {
		d := New("/a", env)
		req, err := Build(MethodGet, d, Overrides{})
		require.NoError(t, err)
		assert.Nil(t, req.Body)
	})
}

func TestBuild_Timeout(t *testing.T) {
	env := WithEnvironment(environment.Prod("https://api.example.com"))

	req, _ := Build(MethodGet, New("/a", env), Overrides{})
	assert.Equal(t, DefaultTimeout, req.Timeout)

	req, _ = Build(MethodGet, New("/a", env, WithTimeout(5*time.Second)), Overrides{})
	assert.Equal(t, 5*time.Second, req.Timeout)

	req, _ = Build(MethodGet, New("/a", env, WithTimeout(5*time.Second)), Overrides{Timeout: time.Second})
	assert.Equal(t, time.Second, req.Timeout)
}
