// Package report renders compatibility results for people and for
// machines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/git-pkgs/enginecheck/internal/compat"
	"github.com/git-pkgs/enginecheck/internal/core"
)

// Options controls rendering.
type Options struct {
	Verbose bool
	Styles  Styles
	// URLs, when set, adds registry links and PURLs to the output.
	URLs core.URLBuilder
}

// Text writes the human-readable report.
func Text(w io.Writer, r *compat.Report, opts Options) error {
	s := opts.Styles
	var b strings.Builder

	b.WriteString("\n" + s.Title.Render("Compatibility Report") + "\n")
	b.WriteString(s.Divider.Render(strings.Repeat("=", 70)) + "\n")

	for _, res := range r.Results {
		if res.Failed() {
			fmt.Fprintf(&b, "%s %s@%s\n", s.Error.Render("✗"), s.Name.Render(res.Name), res.DeclaredRange)
			fmt.Fprintf(&b, "  → Error: %s\n\n", res.Err)
			continue
		}

		status := s.Success.Render("✓")
		if !res.CurrentCompatible {
			status = s.Error.Render("✗")
		}
		fmt.Fprintf(&b, "%s %s\n", status, s.Name.Render(res.Name))
		fmt.Fprintf(&b, "  Current: %s %s\n", res.CurrentVersion, s.Muted.Render("(from range: "+res.DeclaredRange+")"))

		b.WriteString("  Latest supported: ")
		switch {
		case res.LatestSupported == "":
			b.WriteString(s.Error.Render("No compatible version found"))
		case res.UpgradeAvailable:
			b.WriteString(s.Upgrade.Render(res.LatestSupported + " ⬆"))
		default:
			b.WriteString(res.LatestSupported + " " + s.Muted.Render("(up to date)"))
		}
		if res.LatestStatus != "" {
			b.WriteString(" " + s.Error.Render("["+string(res.LatestStatus)+"]"))
		}
		b.WriteString("\n")

		if opts.Verbose {
			engine := engineLabel(r.Engine)
			if res.CurrentEngineSupport != "" {
				b.WriteString(s.Verbose.Render(fmt.Sprintf("  Current %s support: %s", engine, res.CurrentEngineSupport)) + "\n")
			}
			if res.LatestEngineSupport != "" {
				b.WriteString(s.Verbose.Render(fmt.Sprintf("  Latest %s support: %s", engine, res.LatestEngineSupport)) + "\n")
			}
			if opts.URLs != nil && res.LatestSupported != "" {
				b.WriteString(s.Verbose.Render("  "+opts.URLs.Registry(res.Name, res.LatestSupported)) + "\n")
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RuntimeName returns the display name of the runtime behind an engines
// key, e.g. "Node.js" for "node".
func RuntimeName(engine string) string {
	switch engine {
	case "node":
		return "Node.js"
	case "python":
		return "Python"
	case "rust":
		return "Rust"
	}
	return engine
}

func engineLabel(engine string) string {
	if engine == "node" {
		return "Node"
	}
	return RuntimeName(engine)
}

type jsonReport struct {
	Target   string       `json:"target"`
	Engine   string       `json:"engine"`
	Failures int          `json:"failures"`
	Results  []jsonResult `json:"results"`
}

type jsonResult struct {
	Name                 string `json:"name"`
	DeclaredRange        string `json:"declaredRange"`
	CurrentVersion       string `json:"currentVersion,omitempty"`
	CurrentCompatible    bool   `json:"currentCompatible"`
	LatestSupported      string `json:"latestSupported,omitempty"`
	UpgradeAvailable     bool   `json:"upgradeAvailable"`
	CurrentEngineSupport string `json:"currentEngineSupport,omitempty"`
	LatestEngineSupport  string `json:"latestEngineSupport,omitempty"`
	LatestStatus         string `json:"latestStatus,omitempty"`
	PURL                 string `json:"purl,omitempty"`
	URL                  string `json:"url,omitempty"`
	Error                string `json:"error,omitempty"`
	ErrorKind            string `json:"errorKind,omitempty"`
}

// JSON writes the report as an indented JSON document.
func JSON(w io.Writer, r *compat.Report, opts Options) error {
	out := jsonReport{
		Target:   r.Target.String(),
		Engine:   r.Engine,
		Failures: r.Failures(),
		Results:  make([]jsonResult, 0, len(r.Results)),
	}

	for _, res := range r.Results {
		jr := jsonResult{Name: res.Name, DeclaredRange: res.DeclaredRange}
		if res.Failed() {
			jr.Error = res.Err.Error()
			var pkgErr *compat.PackageError
			if errors.As(res.Err, &pkgErr) {
				jr.ErrorKind = string(pkgErr.Kind)
			}
			out.Results = append(out.Results, jr)
			continue
		}

		jr.CurrentVersion = res.CurrentVersion
		jr.CurrentCompatible = res.CurrentCompatible
		jr.LatestSupported = res.LatestSupported
		jr.UpgradeAvailable = res.UpgradeAvailable
		jr.LatestStatus = string(res.LatestStatus)
		if opts.Verbose {
			jr.CurrentEngineSupport = res.CurrentEngineSupport
			jr.LatestEngineSupport = res.LatestEngineSupport
		}
		if opts.URLs != nil && res.LatestSupported != "" {
			urls := core.BuildURLs(opts.URLs, res.Name, res.LatestSupported)
			jr.PURL = urls["purl"]
			jr.URL = urls["registry"]
		}
		out.Results = append(out.Results, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
