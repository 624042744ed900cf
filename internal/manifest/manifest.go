// Package manifest loads the JSON document describing a trace bundle.
//
// A Manifest keeps two views of the document: the typed fields the verifier
// consumes, validated at load time, and the raw decoded tree that the
// canonical digest is computed over. Neither is modified after Parse.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"rnse/internal/canon"
)

// DigestField is the top-level key holding the manifest's own canonical digest.
const DigestField = "manifest_canonical_sha256"

// FieldError reports a required field that is absent or has the wrong type.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("manifest field %s: %s", e.Field, e.Reason)
}

// TraceInfo describes the binary trace file.
type TraceInfo struct {
	SHA256 string
	Length int
}

// BoundaryCheck holds the FS.1 window parameters.
type BoundaryCheck struct {
	BoundaryB int
	WPre      int
	WPost     int
}

// MissingValues is the policy for NaN samples.
type MissingValues struct {
	FailIfWindowEmptyAfterNaNFilter bool
}

// Manifest is a parsed, validated bundle manifest.
type Manifest struct {
	CanonicalSHA256 string
	Trace           TraceInfo
	FS1             BoundaryCheck
	MissingValues   MissingValues

	raw map[string]any
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes a manifest document and validates the consumed fields.
func Parse(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse manifest json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse manifest json: trailing data after document")
	}
	raw, ok := doc.(map[string]any)
	if !ok {
		return nil, &FieldError{Field: "(root)", Reason: "must be a JSON object"}
	}

	m := &Manifest{raw: raw}
	var err error
	if m.CanonicalSHA256, err = stringAt(raw, DigestField); err != nil {
		return nil, err
	}
	if m.Trace.SHA256, err = stringAt(raw, "trace", "sha256"); err != nil {
		return nil, err
	}
	if m.Trace.Length, err = intAt(raw, false, "trace", "length"); err != nil {
		return nil, err
	}
	if m.FS1.BoundaryB, err = intAt(raw, true, "fs1", "boundary_b"); err != nil {
		return nil, err
	}
	if m.FS1.WPre, err = intAt(raw, false, "fs1", "w_pre"); err != nil {
		return nil, err
	}
	if m.FS1.WPost, err = intAt(raw, false, "fs1", "w_post"); err != nil {
		return nil, err
	}
	if m.MissingValues.FailIfWindowEmptyAfterNaNFilter, err = boolAt(raw, true, "missing_values", "fail_if_window_empty_after_nan_filter"); err != nil {
		return nil, err
	}
	return m, nil
}

// Canonical returns the canonical serialization of the manifest with
// DigestField removed. The receiver is not modified.
func (m *Manifest) Canonical() ([]byte, error) {
	stripped := make(map[string]any, len(m.raw))
	for k, v := range m.raw {
		if k != DigestField {
			stripped[k] = v
		}
	}
	b, err := canon.Marshal(stripped)
	if err != nil {
		return nil, fmt.Errorf("canonicalize manifest: %w", err)
	}
	return b, nil
}
