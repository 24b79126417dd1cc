// Package environment maps symbolic deployment targets to base URLs.
package environment

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Kind names a deployment target.
type Kind int

const (
	Development Kind = iota + 1
	Local
	Production
	Test
	LocalFile
)

// String returns the kind name as used in configuration.
func (k Kind) String() string {
	switch k {
	case Development:
		return "development"
	case Local:
		return "local"
	case Production:
		return "production"
	case Test:
		return "test"
	case LocalFile:
		return "local_file"
	default:
		return "unknown"
	}
}

// ParseKind resolves a configuration name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "development", "dev":
		return Development, nil
	case "local":
		return Local, nil
	case "production", "prod":
		return Production, nil
	case "test":
		return Test, nil
	case "local_file", "localfile", "file":
		return LocalFile, nil
	default:
		return 0, fmt.Errorf("environment: unknown kind %q", name)
	}
}

// Environment is a deployment target carrying its URL. It is a comparable
// value and can be used as a map key.
type Environment struct {
	kind Kind
	raw  string
}

// New creates an environment of the given kind.
func New(kind Kind, raw string) Environment {
	return Environment{kind: kind, raw: strings.TrimSpace(raw)}
}

// Dev returns a development environment.
func Dev(rawURL string) Environment { return New(Development, rawURL) }

// Localhost returns a local environment.
func Localhost(rawURL string) Environment { return New(Local, rawURL) }

// Prod returns a production environment.
func Prod(rawURL string) Environment { return New(Production, rawURL) }

// Testing returns a test environment.
func Testing(rawURL string) Environment { return New(Test, rawURL) }

// File returns a local-file environment. An empty fileURL means no file is
// configured and the environment resolves to nothing.
func File(fileURL string) Environment { return New(LocalFile, fileURL) }

// Kind returns the environment's kind.
func (e Environment) Kind() Kind { return e.kind }

// Raw returns the unresolved URL string.
func (e Environment) Raw() string { return e.raw }

// Equal reports whether both environments have the same kind and URL.
func (e Environment) Equal(other Environment) bool { return e == other }

// String implements fmt.Stringer.
func (e Environment) String() string {
	if e.raw == "" {
		return e.kind.String()
	}
	return e.kind.String() + "(" + e.raw + ")"
}

// BaseURL resolves the environment to an absolute base URL. It reports false
// for malformed or relative URLs and for a local-file environment without a
// file URL.
func (e Environment) BaseURL() (*url.URL, bool) {
	if e.raw == "" {
		return nil, false
	}
	if e.kind == LocalFile {
		return fileURL(e.raw)
	}

	u, err := url.Parse(e.raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

func fileURL(raw string) (*url.URL, bool) {
	if filepath.IsAbs(raw) {
		return &url.URL{Scheme: "file", Path: filepath.ToSlash(raw)}, true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return nil, false
	}
	return u, true
}
