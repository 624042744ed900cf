package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rnse/internal/trace"
	"rnse/internal/verify/testutil"
)

func fixture() testutil.Fixture {
	return testutil.Fixture{
		Samples:  []float64{1, 2, 3, 4, 5, 6},
		Boundary: 3, WPre: 3, WPost: 3,
		FailIfEmpty: testutil.Bool(true),
	}
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errb bytes.Buffer
	code = run(args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestVerify_Pass(t *testing.T) {
	dir := testutil.Dir(t, "good")
	testutil.WriteBundle(t, dir, fixture())

	code, out, stderr := execute(t, "verify", dir)
	if code != exitPass {
		t.Fatalf("exit %d, stdout:\n%s\nstderr:\n%s", code, out, stderr)
	}
	if !strings.HasPrefix(out, "PASS\n") {
		t.Errorf("report should start with PASS:\n%s", out)
	}
	for _, want := range []string{
		"  b=3, w_pre=3, w_post=3\n",
		"  delta_mean_post_minus_pre   = 3.0\n",
		"  delta_median_post_minus_pre = 3.0\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestVerify_ExplicitPaths(t *testing.T) {
	b := testutil.WriteBundle(t, testutil.Dir(t, "b"), fixture())
	manifestPath := filepath.Join(t.TempDir(), "m.json")
	tracePath := filepath.Join(t.TempDir(), "t.bin")
	for src, dst := range map[string]string{b.ManifestPath: manifestPath, b.TracePath: tracePath} {
		data, err := os.ReadFile(src)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	code, out, _ := execute(t, "verify", "--manifest", manifestPath, "--trace", tracePath)
	if code != exitPass {
		t.Fatalf("exit %d:\n%s", code, out)
	}
}

func TestVerify_TraceTampered(t *testing.T) {
	f := fixture()
	f.TraceSHA256 = strings.Repeat("0", 64)
	dir := testutil.Dir(t, "tampered")
	testutil.WriteBundle(t, dir, f)

	code, out, _ := execute(t, "verify", dir)
	if code != exitFail {
		t.Fatalf("exit %d, want %d:\n%s", code, exitFail, out)
	}
	if !strings.HasPrefix(out, "FAIL: trace sha256 mismatch\nFAIL\n") {
		t.Errorf("unexpected output:\n%s", out)
	}
	// Statistics are still reported.
	if !strings.Contains(out, "delta_mean_post_minus_pre   = 3.0") {
		t.Errorf("missing deltas:\n%s", out)
	}
}

func TestVerify_EmptyWindow(t *testing.T) {
	f := fixture()
	f.Boundary = 0
	dir := testutil.Dir(t, "edge")
	testutil.WriteBundle(t, dir, f)

	code, out, _ := execute(t, "verify", dir)
	if code != exitFail {
		t.Fatalf("exit %d, want %d:\n%s", code, exitFail, out)
	}
	for _, want := range []string{
		"FAIL: FS.1 windows empty after NaN filtering\n",
		"  pre:   {\"n\": 0}\n",
		"  delta_mean_post_minus_pre   = null\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestVerify_PartialSampleIsFatal(t *testing.T) {
	f := fixture()
	f.RawTrace = make([]byte, 7)
	dir := testutil.Dir(t, "short")
	testutil.WriteBundle(t, dir, f)

	code, out, stderr := execute(t, "verify", dir)
	if code != exitFatal {
		t.Fatalf("exit %d, want %d", code, exitFatal)
	}
	if out != "" {
		t.Errorf("no verdict expected on a fatal error, got:\n%s", out)
	}
	if !strings.Contains(stderr, "trace length not multiple of 8 bytes: 7") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestVerify_MissingBundle(t *testing.T) {
	code, _, stderr := execute(t, "verify", filepath.Join(t.TempDir(), "absent"))
	if code != exitFatal {
		t.Errorf("exit %d, want %d", code, exitFatal)
	}
	if stderr == "" {
		t.Error("expected an error message on stderr")
	}
}

func TestBatch(t *testing.T) {
	root := t.TempDir()
	testutil.WriteBundle(t, filepath.Join(root, "good"), fixture())
	bad := fixture()
	bad.TraceSHA256 = strings.Repeat("0", 64)
	testutil.WriteBundle(t, filepath.Join(root, "tampered"), bad)

	cfg := filepath.Join(root, "bundles.yaml")
	doc := "parallel: 2\nbundles:\n  - dir: good\n  - dir: tampered\n"
	if err := os.WriteFile(cfg, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, stderr := execute(t, "batch", "--config", cfg, "--markdown")
	if code != exitFail {
		t.Fatalf("exit %d, want %d\nstdout:\n%s\nstderr:\n%s", code, exitFail, out, stderr)
	}
	good := strings.Index(out, "== good\nPASS\n")
	tampered := strings.Index(out, "== tampered\nFAIL: trace sha256 mismatch\n")
	if good < 0 || tampered < 0 || good > tampered {
		t.Errorf("reports missing or out of order:\n%s", out)
	}
	if !strings.Contains(out, "| good") || !strings.Contains(out, "| tampered") {
		t.Errorf("summary table missing rows:\n%s", out)
	}
}

func TestBatch_ErroredBundle(t *testing.T) {
	root := t.TempDir()
	testutil.WriteBundle(t, filepath.Join(root, "good"), fixture())
	cfg := filepath.Join(root, "bundles.yaml")
	doc := "bundles:\n  - dir: good\n  - dir: missing\n"
	if err := os.WriteFile(cfg, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, _ := execute(t, "batch", "--config", cfg)
	if code != exitFatal {
		t.Fatalf("exit %d, want %d:\n%s", code, exitFatal, out)
	}
	if !strings.Contains(out, "== missing\nERROR: ") {
		t.Errorf("missing ERROR line:\n%s", out)
	}
}

func TestBatch_RequiresConfig(t *testing.T) {
	if code, _, _ := execute(t, "batch"); code != exitFatal {
		t.Errorf("exit %d, want %d", code, exitFatal)
	}
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.f64le")
	if err := os.WriteFile(path, trace.Encode([]float64{1, 2, 3, 4, 5, 6}), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, stderr := execute(t, "inspect", path, "--boundary", "3", "--w-pre", "3", "--w-post", "3")
	if code != exitPass {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"full", "pre", "post", "[0, 3)", "[3, 6)", "1.707825127659933", "0.816496580927726"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}

	code, out, _ = execute(t, "inspect", path)
	if code != exitPass {
		t.Fatalf("exit %d", code)
	}
	if strings.Contains(out, "post") {
		t.Errorf("windows should only appear with --boundary:\n%s", out)
	}
}

func TestInspect_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.f64le")
	if err := os.WriteFile(path, make([]byte, 9), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := execute(t, "inspect", path); code != exitFatal {
		t.Errorf("partial sample: exit %d, want %d", code, exitFatal)
	}
	if code, _, _ := execute(t, "inspect", path, "--w-pre", "-1"); code != exitFatal {
		t.Errorf("negative width: exit %d, want %d", code, exitFatal)
	}
}

func TestRoot_BadLogLevel(t *testing.T) {
	dir := testutil.Dir(t, "good")
	testutil.WriteBundle(t, dir, fixture())
	code, _, stderr := execute(t, "--log-level", "loud", "verify", dir)
	if code != exitFatal {
		t.Errorf("exit %d, want %d", code, exitFatal)
	}
	if !strings.Contains(stderr, "loud") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRoot_UnknownCommand(t *testing.T) {
	if code, _, _ := execute(t, "frobnicate"); code != exitFatal {
		t.Errorf("exit %d, want %d", code, exitFatal)
	}
}
