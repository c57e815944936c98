package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/git-pkgs/enginecheck/internal/compat"
	"github.com/git-pkgs/enginecheck/internal/core"
	"github.com/git-pkgs/enginecheck/internal/npm"
	"github.com/git-pkgs/enginecheck/internal/semver"
)

func sampleReport() *compat.Report {
	return &compat.Report{
		Target: semver.MustParse("20.0.0"),
		Engine: "node",
		Results: []compat.Result{
			{
				Name:                 "fastify",
				DeclaredRange:        "^3.29.0",
				CurrentVersion:       "3.29.0",
				CurrentCompatible:    true,
				LatestSupported:      "4.26.0",
				UpgradeAvailable:     true,
				CurrentEngineSupport: ">=10",
				LatestEngineSupport:  ">=14.6.0",
			},
			{
				Name:              "zod",
				DeclaredRange:     "3.22.4",
				CurrentVersion:    "3.22.4",
				CurrentCompatible: true,
				LatestSupported:   "3.22.4",
				LatestStatus:      core.StatusDeprecated,
			},
			{
				Name:           "legacy",
				DeclaredRange:  "^0.1.0",
				CurrentVersion: "0.1.0",
			},
			{
				Name:          "left-pad",
				DeclaredRange: "^1.3.0",
				Err: &compat.PackageError{
					Name: "left-pad",
					Kind: compat.KindFetch,
					Err:  &core.NotFoundError{Ecosystem: "npm", Name: "left-pad"},
				},
			},
		},
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, sampleReport(), Options{Styles: PlainStyles()}); err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Compatibility Report",
		"✓ fastify",
		"  Current: 3.29.0 (from range: ^3.29.0)",
		"  Latest supported: 4.26.0 ⬆",
		"  Latest supported: 3.22.4 (up to date) [deprecated]",
		"✗ legacy",
		"  Latest supported: No compatible version found",
		"✗ left-pad@^1.3.0",
		"  → Error: npm: package left-pad not found",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Node support") {
		t.Errorf("engine support printed without verbose:\n%s", out)
	}
}

func TestTextVerbose(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Verbose: true, Styles: PlainStyles(), URLs: &npm.URLs{}}
	if err := Text(&buf, sampleReport(), opts); err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"  Current Node support: >=10",
		"  Latest Node support: >=14.6.0",
		"  https://www.npmjs.com/package/fastify/v/4.26.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleReport(), Options{URLs: &npm.URLs{}}); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var got jsonReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.Target != "20.0.0" || got.Engine != "node" || got.Failures != 1 {
		t.Errorf("header = %+v", got)
	}
	if len(got.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(got.Results))
	}

	fastify := got.Results[0]
	if fastify.PURL != "pkg:npm/fastify@4.26.0" || !fastify.UpgradeAvailable {
		t.Errorf("fastify = %+v", fastify)
	}
	if fastify.CurrentEngineSupport != "" {
		t.Errorf("engine support included without verbose: %+v", fastify)
	}

	if zod := got.Results[1]; zod.LatestStatus != "deprecated" {
		t.Errorf("zod latestStatus = %q, want deprecated", zod.LatestStatus)
	}
	if fastify.LatestStatus != "" {
		t.Errorf("fastify latestStatus = %q, want empty", fastify.LatestStatus)
	}

	leftPad := got.Results[3]
	if leftPad.ErrorKind != "fetch" || leftPad.Error == "" || leftPad.CurrentVersion != "" {
		t.Errorf("left-pad = %+v", leftPad)
	}
}

func TestRuntimeName(t *testing.T) {
	tests := map[string]string{
		"node":   "Node.js",
		"python": "Python",
		"rust":   "Rust",
		"bun":    "bun",
	}
	for engine, want := range tests {
		if got := RuntimeName(engine); got != want {
			t.Errorf("RuntimeName(%q) = %q, want %q", engine, got, want)
		}
	}
}
