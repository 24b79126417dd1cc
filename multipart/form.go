// Package multipart builds multipart/form-data bodies with a fixed,
// byte-exact layout.
package multipart

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"strings"
)

type part struct {
	name        string
	filename    string
	contentType string
	data        []byte
}

// Form accumulates fields and files in insertion order. Parts are never
// reordered or deduplicated by name.
type Form struct {
	boundary string
	parts    []part
}

// New creates a form that uses boundary as its delimiter.
func New(boundary string) *Form {
	return &Form{boundary: boundary}
}

// NewRandom creates a form with a random boundary.
func NewRandom() *Form {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return New("Boundary-" + hex.EncodeToString(buf[:]))
}

// Boundary returns the form's boundary.
func (f *Form) Boundary() string { return f.boundary }

// AddField appends a simple name/value field.
func (f *Form) AddField(name, value string) *Form {
	f.parts = append(f.parts, part{name: name, data: []byte(value)})
	return f
}

// AddFile appends a file part. An empty contentType omits the
// Content-Type line.
func (f *Form) AddFile(name, filename, contentType string, data []byte) *Form {
	f.parts = append(f.parts, part{
		name:        name,
		filename:    filename,
		contentType: contentType,
		data:        bytes.Clone(data),
	})
	return f
}

// Len returns the number of parts.
func (f *Form) Len() int { return len(f.parts) }

// Encode renders the body. An empty form encodes to the closing boundary
// line alone.
func (f *Form) Encode() []byte {
	var buf bytes.Buffer
	for _, p := range f.parts {
		buf.WriteString("--" + f.boundary + "\r\n")
		buf.WriteString(`Content-Disposition: form-data; name="` + escapeQuotes(p.name) + `"`)
		if p.filename != "" {
			buf.WriteString(`; filename="` + escapeQuotes(p.filename) + `"`)
		}
		buf.WriteString("\r\n")
		if p.contentType != "" {
			buf.WriteString("Content-Type: " + p.contentType + "\r\n")
		}
		buf.WriteString("\r\n")
		buf.Write(p.data)
		buf.WriteString("\r\n")
	}
	buf.WriteString("--" + f.boundary + "--\r\n")
	return buf.Bytes()
}

// Bytes is Encode; it lets a Form be passed directly as a request body.
func (f *Form) Bytes() []byte { return f.Encode() }

// ContentType returns the multipart/form-data header value.
func (f *Form) ContentType() string {
	return "multipart/form-data; boundary=" + f.boundary
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
