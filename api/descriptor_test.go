package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonnyholland/ComposableArchitecturePattern/environment"
)

type user struct{ Name string }

type tagged struct{}

func (tagged) ResponseKind() ResponseKind { return "tagged.v1" }

func TestNew_Defaults(t *testing.T) {
	d := New("/users")
	assert.NotEmpty(t, d.ID(), "expected generated id")
	assert.True(t, d.SupportsMethod(MethodGet))
	assert.False(t, d.SupportsMethod(MethodPost), "expected GET only, got %v", d.Methods())
	assert.Equal(t, DefaultTimeout, d.Timeout())
	assert.Nil(t, d.Environment(), "expected no pinned environment")
}

func TestDescriptor_AccessorsCopy(t *testing.T) {
	d := New("/a", WithMethods(MethodGet, MethodPost), WithHeaders(map[string]string{"X-A": "1"}))

	d.Methods()[0] = MethodDelete
	d.Headers()["X-A"] = "2"
	assert.True(t, d.SupportsMethod(MethodGet), "methods were mutated through accessor")
	assert.Equal(t, "1", d.Headers()["X-A"], "headers were mutated through accessor")
}

func TestDescriptor_Equality(t *testing.T) {
	env := environment.Prod("https://api.example.com")
	a := New("/a", WithEnvironment(env), WithMethods(MethodGet, MethodPost), WithResponseKinds("user", "users"))
	b := New("/a", WithEnvironment(env), WithMethods(MethodPost, MethodGet), WithResponseKinds("users"))

	assert.False(t, a.Equal(b), "distinct ids must not be Equal")
	assert.True(t, a.IsEqual(b), "structurally equal descriptors must be IsEqual")

	tests := []struct {
		name  string
		other *Descriptor
	}{
		{"path", New("/b", WithEnvironment(env), WithMethods(MethodGet, MethodPost), WithResponseKinds("user"))},
		{"environment", New("/a", WithMethods(MethodGet, MethodPost), WithResponseKinds("user"))},
		{"methods", New("/a", WithEnvironment(env), WithResponseKinds("user"))},
		{"kinds", New("/a", WithEnvironment(env), WithMethods(MethodGet, MethodPost), WithResponseKinds("other"))},
		{"timeout", New("/a", WithEnvironment(env), WithMethods(MethodGet, MethodPost), WithResponseKinds("user"), WithTimeout(time.Second))},
		{"body", New("/a", WithEnvironment(env), WithMethods(MethodGet, MethodPost), WithResponseKinds("user"), WithBody("x"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, a.IsEqual(tt.other), "expected difference in %s", tt.name)
		})
	}

	c := New("/a", WithID(a.ID()))
	assert.True(t, a.Equal(c), "same id must be Equal")
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, ResponseKind("tagged.v1"), KindFor[tagged]())
	assert.Equal(t, ResponseKind("api.user"), KindFor[user]())
	assert.Equal(t, ResponseKind("[]api.user"), KindFor[[]user]())

	d := New("/a", WithResponseKinds(KindFor[user]()))
	assert.True(t, d.Supports(KindFor[user]()))
	assert.False(t, d.Supports(KindFor[tagged]()))
}

func TestRequest_CloneIsolation(t *testing.T) {
	d := New("/a", WithEnvironment(environment.Prod("https://api.example.com")))
	req, err := Build(MethodGet, d, Overrides{Headers: map[string]string{"X-A": "1"}})
	require.NoError(t, err)

	next := req.WithHeader("x-b", "2")
	assert.NotContains(t, req.Header, "X-B", "WithHeader mutated the original")
	assert.Equal(t, "2", next.HeaderValue("X-B"))
	assert.Equal(t, "1", next.HeaderValue("X-A"))

	next.URL.Path = "/changed"
	assert.NotEqual(t, "/changed", req.URL.Path, "Clone shares the URL")

	hr, err := req.HTTPRequest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", hr.Header.Get("X-A"))
	assert.Equal(t, "https://api.example.com/a", hr.URL.String())
}

func TestParseMethod(t *testing.T) {
	m, ok := ParseMethod("patch")
	require.True(t, ok)
	assert.Equal(t, MethodPatch, m)

	_, ok = ParseMethod("TRACE")
	assert.False(t, ok, "expected TRACE to be rejected")
}
