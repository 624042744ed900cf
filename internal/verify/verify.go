// Package verify checks a trace bundle's integrity and summarizes its FS.1
// boundary statistics.
//
// Verification is a single linear pass. The three soft checks (manifest
// digest, trace digest, non-empty windows) always all run and are ANDed into
// Result.OK. Structural problems (unreadable files, malformed JSON, missing
// manifest fields, a trace that does not decode to the declared length) abort
// the run with an error and no Result.
package verify

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"rnse/internal/digest"
	"rnse/internal/manifest"
	"rnse/internal/stats"
	"rnse/internal/trace"
)

// Default file names inside a bundle directory.
const (
	ManifestFile = "manifest.json"
	TraceFile    = "trace.f64le"
)

// Failure reasons recorded for soft checks.
const (
	ReasonManifestDigest = "manifest canonical sha256 mismatch"
	ReasonTraceDigest    = "trace sha256 mismatch"
	ReasonEmptyWindow    = "FS.1 windows empty after NaN filtering"
)

// Bundle locates the two files of a bundle.
type Bundle struct {
	Name         string
	ManifestPath string
	TracePath    string
}

// BundleDir returns the bundle stored under dir with the default file names.
func BundleDir(dir string) Bundle {
	return Bundle{
		Name:         filepath.Base(filepath.Clean(dir)),
		ManifestPath: filepath.Join(dir, ManifestFile),
		TracePath:    filepath.Join(dir, TraceFile),
	}
}

// Result is the outcome of one verification run.
type Result struct {
	OK             bool
	TraceDigest    string
	ManifestDigest string
	FS1            manifest.BoundaryCheck

	Full stats.Summary
	Pre  stats.Summary
	Post stats.Summary

	// DeltaMean and DeltaMedian are post minus pre, nil unless both windows
	// have samples.
	DeltaMean   *float64
	DeltaMedian *float64

	// Failures lists soft check reasons in the order they were detected.
	Failures []string
}

// Verdict returns "PASS" or "FAIL".
func (r *Result) Verdict() string {
	if r.OK {
		return "PASS"
	}
	return "FAIL"
}

// Verifier runs bundle verification. The zero value is not usable; call New.
type Verifier struct {
	log  *slog.Logger
	sink io.Writer
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) { v.log = l }
}

// WithFailureSink makes the verifier write a "FAIL: <reason>" line to w at
// the moment each soft check fails.
func WithFailureSink(w io.Writer) Option {
	return func(v *Verifier) { v.sink = w }
}

// New returns a Verifier with the given options applied.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		log:  slog.Default().With("component", "verify"),
		sink: io.Discard,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyBundle reads both bundle files fully, then verifies them.
func (v *Verifier) VerifyBundle(b Bundle) (*Result, error) {
	m, err := manifest.Load(b.ManifestPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.TracePath)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return v.Verify(m, data)
}

// Verify checks m against the raw trace bytes.
func (v *Verifier) Verify(m *manifest.Manifest, traceData []byte) (*Result, error) {
	log := v.log.With("run_id", uuid.NewString())
	r := &Result{OK: true, FS1: m.FS1}

	// Malformed declared digests still run through the comparisons below and
	// fail there; the warning names the field.
	for _, d := range [][2]string{
		{manifest.DigestField, m.CanonicalSHA256},
		{"trace.sha256", m.Trace.SHA256},
	} {
		if !digest.Valid(d[1]) {
			log.Warn("declared digest is not a lowercase hex "+digest.Algorithm+" value",
				"field", d[0], "declared", d[1], "want_len", digest.Size)
		}
	}

	canonical, err := m.Canonical()
	if err != nil {
		return nil, err
	}
	r.ManifestDigest = digest.Sum(canonical)
	log.Debug("manifest digest computed", "canonical_bytes", len(canonical), "digest", r.ManifestDigest)
	if r.ManifestDigest != m.CanonicalSHA256 {
		v.fail(log, r, ReasonManifestDigest, "expected", m.CanonicalSHA256, "actual", r.ManifestDigest)
	}

	r.TraceDigest = digest.Sum(traceData)
	log.Debug("trace digest computed", "bytes", len(traceData), "digest", r.TraceDigest)
	if r.TraceDigest != m.Trace.SHA256 {
		v.fail(log, r, ReasonTraceDigest, "expected", m.Trace.SHA256, "actual", r.TraceDigest)
	}

	samples, err := trace.Decode(traceData, m.Trace.Length)
	if err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}

	pre := stats.PreWindow(len(samples), m.FS1.BoundaryB, m.FS1.WPre)
	post := stats.PostWindow(len(samples), m.FS1.BoundaryB, m.FS1.WPost)
	preSlice, postSlice := pre.Slice(samples), post.Slice(samples)
	log.Debug("windows resolved", "pre", pre, "post", post)

	if m.MissingValues.FailIfWindowEmptyAfterNaNFilter {
		if len(stats.FilterMissing(preSlice)) == 0 || len(stats.FilterMissing(postSlice)) == 0 {
			v.fail(log, r, ReasonEmptyWindow, "pre_len", pre.Len(), "post_len", post.Len())
		}
	}

	r.Full = stats.Compute(samples)
	r.Pre = stats.Compute(preSlice)
	r.Post = stats.Compute(postSlice)

	if !r.Pre.Empty() && !r.Post.Empty() {
		dm := r.Post.Mean - r.Pre.Mean
		dmed := r.Post.Median - r.Pre.Median
		r.DeltaMean, r.DeltaMedian = &dm, &dmed
	}

	log.Info("bundle verified", "verdict", r.Verdict(), "samples", len(samples), "failures", len(r.Failures))
	return r, nil
}

func (v *Verifier) fail(log *slog.Logger, r *Result, reason string, attrs ...any) {
	r.OK = false
	r.Failures = append(r.Failures, reason)
	log.Warn("check failed", append([]any{"reason", reason}, attrs...)...)
	fmt.Fprintf(v.sink, "FAIL: %s\n", reason)
}
