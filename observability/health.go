package observability

import "context"

// HealthStatus represents the health state of a dependency.
type HealthStatus string

const (
	HealthStatusUp   HealthStatus = "up"
	HealthStatusDown HealthStatus = "down"
)

// Health describes one dependency's health.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// ServiceHealth aggregates dependency health. It is down when any
// dependency is down.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Components []Health     `json:"components,omitempty"`
}

// HealthCheck pings a named dependency; a non-nil error marks it down.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// CheckHealth runs every check in order.
func CheckHealth(ctx context.Context, service string, checks ...HealthCheck) *ServiceHealth {
	sh := &ServiceHealth{Service: service, Status: HealthStatusUp}
	for _, c := range checks {
		h := Health{Name: c.Name, Status: HealthStatusUp}
		if err := c.Ping(ctx); err != nil {
			h.Status = HealthStatusDown
			h.Message = err.Error()
			sh.Status = HealthStatusDown
		}
		sh.Components = append(sh.Components, h)
	}
	return sh
}
