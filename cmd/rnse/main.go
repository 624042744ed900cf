// rnse verifies trace bundles: a JSON manifest plus a little-endian float64
// trace. It checks the manifest's canonical digest and the trace digest, and
// reports FS.1 statistics around the declared boundary.
//
// Usage:
//
//	rnse verify [bundle-dir] [--manifest=<path>] [--trace=<path>]
//	rnse batch --config=<bundles.yaml> [--parallel=N] [--markdown]
//	rnse inspect <trace.f64le> [--boundary=B --w-pre=N --w-post=N]
//	rnse serve
//
// Exit status is 0 on PASS, 2 on FAIL and 1 on a malformed bundle or any
// other fatal error.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	exitPass  = 0
	exitFatal = 1
	exitFail  = 2
)

// version is set at build time via -ldflags.
var version = "dev"

// exitError carries a non-zero exit status that is not itself an error
// message, such as a FAIL verdict.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitPass
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(stderr, "rnse:", err)
	return exitFatal
}
