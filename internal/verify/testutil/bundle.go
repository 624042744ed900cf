// Package testutil writes verification bundles for tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"rnse/internal/digest"
	"rnse/internal/manifest"
	"rnse/internal/trace"
	"rnse/internal/verify"
)

// Fixture describes a bundle to write. Digests are computed correctly unless
// overridden.
type Fixture struct {
	Samples  []float64
	Boundary int
	WPre     int
	WPost    int

	// FailIfEmpty sets missing_values.fail_if_window_empty_after_nan_filter;
	// nil omits the missing_values object.
	FailIfEmpty *bool

	// Length overrides trace.length when non-nil.
	Length *int

	TraceSHA256    string
	ManifestSHA256 string

	// RawTrace, when non-nil, is written instead of the encoded Samples.
	RawTrace []byte
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// WriteBundle writes manifest.json and trace.f64le under dir and returns the
// bundle. It calls t.Fatal on any error.
func WriteBundle(t testing.TB, dir string, f Fixture) verify.Bundle {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("WriteBundle: mkdir: %v", err)
	}

	data := f.RawTrace
	if data == nil {
		data = trace.Encode(f.Samples)
	}
	length := len(f.Samples)
	if f.Length != nil {
		length = *f.Length
	}
	traceSHA := f.TraceSHA256
	if traceSHA == "" {
		traceSHA = digest.Sum(data)
	}

	doc := map[string]any{
		manifest.DigestField: "",
		"version":            "rnse-0.1",
		"trace":              map[string]any{"sha256": traceSHA, "length": length, "dtype": "float64", "endianness": "little"},
		"fs1":                map[string]any{"boundary_b": f.Boundary, "w_pre": f.WPre, "w_post": f.WPost},
	}
	if f.FailIfEmpty != nil {
		doc["missing_values"] = map[string]any{"fail_if_window_empty_after_nan_filter": *f.FailIfEmpty}
	}

	manifestSHA := f.ManifestSHA256
	if manifestSHA == "" {
		manifestSHA = CanonicalDigest(t, doc)
	}
	doc[manifest.DigestField] = manifestSHA

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("WriteBundle: marshal manifest: %v", err)
	}
	b := verify.BundleDir(dir)
	if err := os.WriteFile(b.ManifestPath, raw, 0o644); err != nil {
		t.Fatalf("WriteBundle: write manifest: %v", err)
	}
	if err := os.WriteFile(b.TracePath, data, 0o644); err != nil {
		t.Fatalf("WriteBundle: write trace: %v", err)
	}
	return b
}

// CanonicalDigest returns the canonical manifest digest of doc as the
// verifier computes it.
func CanonicalDigest(t testing.TB, doc map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("CanonicalDigest: marshal: %v", err)
	}
	m, err := manifest.Parse(raw)
	if err != nil {
		t.Fatalf("CanonicalDigest: parse: %v", err)
	}
	canonical, err := m.Canonical()
	if err != nil {
		t.Fatalf("CanonicalDigest: canonicalize: %v", err)
	}
	return digest.Sum(canonical)
}

// Dir returns a fresh bundle directory named name under t.TempDir().
func Dir(t testing.TB, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}
