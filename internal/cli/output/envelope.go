// Package output defines the --json envelope and payloads.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// SchemaVersion versions the JSON envelope, independently of the config file.
const SchemaVersion = "1.0.0"

// Meta describes the invocation that produced an envelope.
type Meta struct {
	Command       string    `json:"command"`
	SchemaVersion string    `json:"schema_version"`
	Version       string    `json:"version,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	TS            time.Time `json:"ts"`
}

// Failure is the error half of an envelope.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope wraps every --json response. Exactly one of Data and Error is
// set.
type Envelope struct {
	Ok    bool     `json:"ok"`
	Data  any      `json:"data,omitempty"`
	Error *Failure `json:"error,omitempty"`
	Meta  Meta     `json:"meta"`
}

// Invocation stamps envelopes for one command run.
type Invocation struct {
	Command string
	Version string
	Started time.Time
}

func (inv Invocation) meta() Meta {
	m := Meta{
		Command:       inv.Command,
		SchemaVersion: SchemaVersion,
		Version:       inv.Version,
		TS:            time.Now().UTC(),
	}
	if !inv.Started.IsZero() {
		m.DurationMS = time.Since(inv.Started).Milliseconds()
	}
	return m
}

// Success writes data as an ok envelope.
func (inv Invocation) Success(w io.Writer, data any) error {
	return encode(w, Envelope{Ok: true, Data: data, Meta: inv.meta()})
}

// Fail writes an error envelope. An empty code becomes "command_failed".
func (inv Invocation) Fail(w io.Writer, code string, err error) error {
	if code == "" {
		code = "command_failed"
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return encode(w, Envelope{Error: &Failure{Code: code, Message: msg}, Meta: inv.meta()})
}

func encode(w io.Writer, env Envelope) error {
	if w == nil {
		w = io.Discard
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
