package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonnyholland/ComposableArchitecturePattern/logger"
)

// ComponentInfo is one line of the startup summary.
type ComponentInfo struct {
	Name    string
	Type    string // "courier", "cache", "auth", "telemetry", "pipeline"
	Details string
}

// Summary records what Build assembled.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	components      []ComponentInfo
}

// NewSummary creates a summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// Track adds a component.
func (s *Summary) Track(name, componentType, details string) {
	s.components = append(s.components, ComponentInfo{Name: name, Type: componentType, Details: details})
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Components returns the tracked components in order.
func (s *Summary) Components() []ComponentInfo {
	return append([]ComponentInfo(nil), s.components...)
}

// String renders the summary as an aligned table.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", s.serviceName)
	if s.version != "" {
		fmt.Fprintf(&b, " v%s", s.version)
	}
	fmt.Fprintf(&b, " ready in %s\n", s.startupDuration.Round(time.Millisecond))

	width := 0
	for _, c := range s.components {
		width = max(width, len(c.Name))
	}
	for _, c := range s.components {
		fmt.Fprintf(&b, "  %-*s  %-9s  %s\n", width, c.Name, c.Type, c.Details)
	}
	return b.String()
}

// Log writes one info line per component.
func (s *Summary) Log(log *logger.Logger) {
	for _, c := range s.components {
		log.Info("component ready", logger.Fields(
			"name", c.Name,
			"type", c.Type,
			"details", c.Details,
		))
	}
	log.Info("bootstrap complete", logger.DurationFields("startup", s.startupDuration))
}
