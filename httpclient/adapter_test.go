package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
	"github.com/jonnyholland/ComposableArchitecturePattern/errors"
	"github.com/jonnyholland/ComposableArchitecturePattern/version"
)

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/users/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":          c.Param("id"),
			"auth":        c.GetHeader("Authorization"),
			"correlation": c.GetHeader(CorrelationHeader),
			"agent":       c.GetHeader("User-Agent"),
			"page":        c.Query("page"),
		})
	})
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusCreated, c.ContentType(), body)
	})
	r.GET("/status/:code", func(c *gin.Context) {
		switch c.Param("code") {
		case "401":
			c.String(http.StatusUnauthorized, "expired")
		case "404":
			c.String(http.StatusNotFound, "missing")
		case "503":
			c.String(http.StatusServiceUnavailable, "down")
		case "304":
			c.Status(http.StatusNotModified)
		}
	})
	r.GET("/slow", func(c *gin.Context) {
		select {
		case <-time.After(2 * time.Second):
		case <-c.Request.Context().Done():
		}
		c.Status(http.StatusOK)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newRequest(t *testing.T, method api.Method, rawURL string) api.Request {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("bad url: %v", err)
	}
	return api.Request{URL: u, Method: method, Header: map[string]string{}}
}

func TestAdapter_Send(t *testing.T) {
	srv := upstream(t)
	a, err := New(Config{Headers: map[string]string{"User-Agent": "cap-test"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close(context.Background())

	req := newRequest(t, api.MethodGet, srv.URL+"/users/42?page=3").WithHeader("Authorization", "Bearer tok")
	body, err := a.Send(context.Background(), req, "corr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"agent":"cap-test","auth":"Bearer tok","correlation":"corr-1","id":"42","page":"3"}`
	if string(body) != want {
		t.Errorf("expected %s, got %s", want, body)
	}
}

func TestAdapter_DefaultUserAgent(t *testing.T) {
	srv := upstream(t)
	a, err := New(Config{Name: "billing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := a.Send(context.Background(), newRequest(t, api.MethodGet, srv.URL+"/users/1"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `"agent":"` + version.UserAgent("billing") + `"`
	if !strings.Contains(string(body), want) {
		t.Errorf("expected %s in %s", want, body)
	}
}

func TestAdapter_SendBody(t *testing.T) {
	srv := upstream(t)
	a, _ := New(Config{})

	req := newRequest(t, api.MethodPost, srv.URL+"/echo").WithHeader("Content-Type", "application/json")
	req.Body = []byte(`{"name":"x"}`)

	body, err := a.Send(context.Background(), req, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"name":"x"}` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestAdapter_StatusClassification(t *testing.T) {
	srv := upstream(t)
	a, _ := New(Config{})

	tests := []struct {
		code string
		kind errors.Kind
	}{
		{"401", errors.KindUnauthorized},
		{"404", errors.KindNetwork},
		{"503", errors.KindServer},
		{"304", errors.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := a.Send(context.Background(), newRequest(t, api.MethodGet, srv.URL+"/status/"+tt.code), "")
			if got := errors.KindOf(err); got != tt.kind {
				t.Errorf("expected %s, got %s (%v)", tt.kind, got, err)
			}
		})
	}

	_, err := a.Send(context.Background(), newRequest(t, api.MethodGet, srv.URL+"/status/503"), "")
	e, _ := errors.AsError(err)
	if e.StatusCode != 503 || string(e.Body) != "down" {
		t.Errorf("expected status and body on server error, got %+v", e)
	}
}

func TestAdapter_Timeouts(t *testing.T) {
	srv := upstream(t)
	a, _ := New(Config{})

	req := newRequest(t, api.MethodGet, srv.URL+"/slow")
	req.Timeout = 20 * time.Millisecond
	_, err := a.Send(context.Background(), req, "")
	if !errors.IsNetwork(err) {
		t.Errorf("request timeout should be a network error, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req.Timeout = 0
	_, err = a.Send(ctx, req, "")
	if !errors.IsCancelled(err) {
		t.Errorf("caller deadline should be a cancellation, got %v", err)
	}
}

func TestAdapter_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	a, _ := New(Config{})
	_, err := a.Send(context.Background(), newRequest(t, api.MethodGet, addr+"/x"), "")
	if !errors.IsNetwork(err) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestAdapter_Options(t *testing.T) {
	a, err := New(Config{HTTP2: true, Tracing: true, TLS: &TLSConfig{ServerName: "api.example.com"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Config().Timeout != defaultTimeout {
		t.Errorf("expected default timeout, got %v", a.Config().Timeout)
	}
	if a.Unwrap().Transport == nil {
		t.Error("expected transport")
	}

	custom := &http.Client{}
	a, _ = New(Config{}, WithHTTPClient(custom))
	if a.Unwrap() != custom {
		t.Error("expected custom client")
	}

	if _, err := New(Config{TLS: &TLSConfig{CertFile: "c.pem"}}); err == nil {
		t.Error("expected validation error for cert without key")
	}
}
