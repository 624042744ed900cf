// Package mcp exposes bundle verification as an MCP tool over stdio.
package mcp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"rnse/internal/logging"
	"rnse/internal/verify"
)

// Server wraps the MCP SDK server.
type Server struct {
	MCPServer *sdkmcp.Server
	// Root resolves relative paths in tool input.
	Root string

	log *slog.Logger
}

// NewServer creates an MCP server with the verification tools registered.
// It captures the current working directory as Root.
func NewServer(version string) *Server {
	cwd, _ := os.Getwd()
	s := &Server{
		Root: cwd,
		log:  logging.New("mcp"),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "rnse", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "verify_bundle",
		Description: "Verify a trace bundle (manifest.json + trace.f64le): manifest and trace sha256 digests, FS.1 window statistics. Pass dir, or manifest_path and trace_path.",
	}, s.handleVerifyBundle)
}

type verifyBundleInput struct {
	Dir          string `json:"dir,omitempty" jsonschema:"bundle directory containing manifest.json and trace.f64le"`
	ManifestPath string `json:"manifest_path,omitempty" jsonschema:"manifest path, used with trace_path instead of dir"`
	TracePath    string `json:"trace_path,omitempty" jsonschema:"trace path, used with manifest_path instead of dir"`
}

type verifyBundleOutput struct {
	OK             bool     `json:"ok"`
	Verdict        string   `json:"verdict"`
	Failures       []string `json:"failures"`
	TraceDigest    string   `json:"trace_digest"`
	ManifestDigest string   `json:"manifest_digest"`
	DeltaMean      string   `json:"delta_mean"`
	DeltaMedian    string   `json:"delta_median"`
	Report         string   `json:"report"`
}

func (s *Server) handleVerifyBundle(_ context.Context, _ *sdkmcp.CallToolRequest, input verifyBundleInput) (*sdkmcp.CallToolResult, verifyBundleOutput, error) {
	b, err := s.bundleFor(input)
	if err != nil {
		return nil, verifyBundleOutput{}, err
	}

	var buf bytes.Buffer
	v := verify.New(verify.WithFailureSink(&buf), verify.WithLogger(s.log.With("bundle", b.Name)))
	r, err := v.VerifyBundle(b)
	if err != nil {
		return nil, verifyBundleOutput{}, fmt.Errorf("verify %s: %w", b.Name, err)
	}
	if err := verify.WriteReport(&buf, r); err != nil {
		return nil, verifyBundleOutput{}, err
	}

	failures := r.Failures
	if failures == nil {
		failures = []string{}
	}
	return nil, verifyBundleOutput{
		OK:             r.OK,
		Verdict:        r.Verdict(),
		Failures:       failures,
		TraceDigest:    r.TraceDigest,
		ManifestDigest: r.ManifestDigest,
		DeltaMean:      verify.FormatDelta(r.DeltaMean),
		DeltaMedian:    verify.FormatDelta(r.DeltaMedian),
		Report:         buf.String(),
	}, nil
}

func (s *Server) bundleFor(in verifyBundleInput) (verify.Bundle, error) {
	switch {
	case in.Dir != "" && (in.ManifestPath != "" || in.TracePath != ""):
		return verify.Bundle{}, fmt.Errorf("pass either dir or manifest_path+trace_path, not both")
	case in.Dir != "":
		return verify.BundleDir(s.resolve(in.Dir)), nil
	case in.ManifestPath != "" && in.TracePath != "":
		m := s.resolve(in.ManifestPath)
		return verify.Bundle{
			Name:         filepath.Base(filepath.Dir(m)),
			ManifestPath: m,
			TracePath:    s.resolve(in.TracePath),
		}, nil
	}
	return verify.Bundle{}, fmt.Errorf("dir or both manifest_path and trace_path are required")
}

func (s *Server) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Root, p)
}
