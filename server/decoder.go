package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DecodeOptions tune how a response body is decoded.
type DecodeOptions struct {
	// DisallowUnknownFields rejects object keys with no matching field.
	DisallowUnknownFields bool `yaml:"disallow_unknown_fields" mapstructure:"disallow_unknown_fields"`
	// UseNumber decodes numbers into interface values as json.Number.
	UseNumber bool `yaml:"use_number" mapstructure:"use_number"`
}

// Decoder deserializes response bodies.
type Decoder interface {
	Decode(data []byte, v any, opts DecodeOptions) error
}

// JSONDecoder decodes JSON bodies. Timestamps are read as RFC 3339.
type JSONDecoder struct{}

// Decode implements Decoder. Trailing data after the first value is an
// error.
func (JSONDecoder) Decode(data []byte, v any, opts DecodeOptions) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if opts.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if opts.UseNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return nil
}
