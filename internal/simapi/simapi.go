// Package simapi contains definitions of JSON objects used in the simulator API.
//
// Every simulator response is an envelope of the form
//
//	{"id": <variant id>, "kernel": <variant payload>}
//
// where the id selects one of the outcomes declared for the endpoint and the
// kernel holds that outcome's fields.
package simapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the wire form of every simulator response.
type Envelope struct {
	ID     int             `json:"id"`
	Kernel json.RawMessage `json:"kernel"`
}

// Variant is implemented by all response payload types.
type Variant interface {
	// EnvelopeID returns the discriminant the server assigns to the variant.
	EnvelopeID() int
}

// Error is the body of a non-2xx response served by the stub server.
type Error struct {
	Error string `json:"error"`
}

var (
	// ErrUnknownVariant is returned when a response carries an id that is not
	// declared for the endpoint.
	ErrUnknownVariant = errors.New("unknown response variant")
	// ErrMissingID is returned when a response has no id field.
	ErrMissingID = errors.New("response has no variant id")
)

// DecodeError is returned when a response body cannot be turned into an envelope
// of the expected endpoint.
type DecodeError struct {
	Endpoint string
	ID       int // zero if the envelope itself could not be parsed
	Err      error
}

func (e *DecodeError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s: bad response: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: bad response variant %d: %v", e.Endpoint, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseEnvelope splits a raw response body into discriminant and payload.
func ParseEnvelope(endpoint string, data []byte) (*Envelope, error) {
	var env struct {
		ID     *int            `json:"id"`
		Kernel json.RawMessage `json:"kernel"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	if env.ID == nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: ErrMissingID}
	}
	return &Envelope{ID: *env.ID, Kernel: env.Kernel}, nil
}

// Kernel decodes the payload of env into a new value of type T.
// A missing kernel decodes to the zero value.
func Kernel[T any](endpoint string, env *Envelope) (*T, error) {
	v := new(T)
	kernel := bytes.TrimSpace(env.Kernel)
	if len(kernel) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(kernel, v); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, ID: env.ID, Err: err}
	}
	return v, nil
}

// Unknown returns the error for an undeclared discriminant.
func Unknown(endpoint string, id int) error {
	return &DecodeError{Endpoint: endpoint, ID: id, Err: ErrUnknownVariant}
}

// Encode produces the envelope for a response variant.
func Encode(v Variant) ([]byte, error) {
	if v == nil {
		return nil, errors.New("nil response variant")
	}
	kernel, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Envelope{ID: v.EnvelopeID(), Kernel: kernel})
}
