package interceptor

import (
	"context"

	"github.com/jonnyholland/ComposableArchitecturePattern/api"
	"github.com/jonnyholland/ComposableArchitecturePattern/logger"
)

// SetHeader sets key to value on every request.
func SetHeader(key, value string) RequestInterceptor {
	return RequestFunc(func(_ context.Context, req api.Request) (api.Request, error) {
		return req.WithHeader(key, value), nil
	})
}

// SetHeaders sets every header in headers on each request.
func SetHeaders(headers map[string]string) RequestInterceptor {
	return RequestFunc(func(_ context.Context, req api.Request) (api.Request, error) {
		return req.WithHeaders(headers), nil
	})
}

// Logging logs requests and responses at debug level.
type Logging struct {
	log *logger.Logger
}

// NewLogging creates a logging interceptor. It implements both interceptor
// interfaces.
func NewLogging(log *logger.Logger) *Logging {
	if log == nil {
		log = logger.Nop()
	}
	return &Logging{log: log.WithComponent("interceptor")}
}

// InterceptRequest implements RequestInterceptor.
func (l *Logging) InterceptRequest(ctx context.Context, req api.Request) (api.Request, error) {
	l.log.WithContext(ctx).Debug("outgoing request", logger.Fields(
		logger.FieldMethod, string(req.Method),
		logger.FieldURL, urlString(req),
		"body_bytes", len(req.Body),
	))
	return req, nil
}

// InterceptResponse implements ResponseInterceptor.
func (l *Logging) InterceptResponse(ctx context.Context, body []byte, req api.Request) ([]byte, error) {
	l.log.WithContext(ctx).Debug("incoming response", logger.Fields(
		logger.FieldMethod, string(req.Method),
		logger.FieldURL, urlString(req),
		"body_bytes", len(body),
	))
	return body, nil
}

func urlString(req api.Request) string {
	if req.URL == nil {
		return ""
	}
	return req.URL.Redacted()
}
