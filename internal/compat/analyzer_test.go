package compat

import (
	"testing"

	"github.com/git-pkgs/enginecheck/internal/core"
	"github.com/git-pkgs/enginecheck/internal/semver"
)

// threeMajors is the metadata shared by the scenario tests below.
var threeMajors = Published{
	"1.0.0": "",
	"2.0.0": ">=14.0.0",
	"3.0.0": ">=18.0.0",
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name        string
		declared    string
		target      string
		published   Published
		wantCurrent string
		wantCompat  bool
		wantLatest  string
		wantUpgrade bool
	}{
		{
			name:        "current is latest supported",
			declared:    "^2.0.0",
			target:      "16.0.0",
			published:   threeMajors,
			wantCurrent: "2.0.0",
			wantCompat:  true,
			wantLatest:  "2.0.0",
			wantUpgrade: false,
		},
		{
			name:        "newer major supports target",
			declared:    "^2.0.0",
			target:      "20.0.0",
			published:   threeMajors,
			wantCurrent: "2.0.0",
			wantCompat:  true,
			wantLatest:  "3.0.0",
			wantUpgrade: true,
		},
		{
			name:        "current too new for target",
			declared:    "^3.0.0",
			target:      "16.0.0",
			published:   threeMajors,
			wantCurrent: "3.0.0",
			wantCompat:  false,
			wantLatest:  "2.0.0",
			wantUpgrade: true,
		},
		{
			name:     "no engines anywhere",
			declared: "^1.0.0",
			target:   "8.0.0",
			published: Published{
				"1.0.0": "",
				"1.4.2": "",
				"1.10.0": "",
			},
			wantCurrent: "1.0.0",
			wantCompat:  true,
			wantLatest:  "1.10.0",
			wantUpgrade: true,
		},
		{
			name:        "nothing supports target",
			declared:    "3.0.0",
			target:      "12.0.0",
			published:   threeMajors,
			wantCurrent: "3.0.0",
			wantCompat:  false,
			wantLatest:  "",
			wantUpgrade: false,
		},
		{
			name:     "or-joined engine constraint",
			declared: "^5.0.0",
			target:   "14.3.0",
			published: Published{
				"5.0.0": "^12 || ^14 || >=16",
				"6.0.0": ">=16",
			},
			wantCurrent: "5.0.0",
			wantCompat:  true,
			wantLatest:  "5.0.0",
			wantUpgrade: false,
		},
		{
			name:     "fallback to first version in declared range",
			declared: "^4.1",
			target:   "12.0.0",
			published: Published{
				"4.0.0": ">=10",
				"4.2.0": ">=10",
				"4.3.1": ">=14",
				"5.0.0": ">=16",
			},
			wantCurrent: "4.1.0",
			wantCompat:  false,
			wantLatest:  "4.2.0",
			wantUpgrade: true,
		},
		{
			name:     "fallback version without engines is compatible",
			declared: "^4.1",
			target:   "12.0.0",
			published: Published{
				"4.2.0": "",
				"5.0.0": ">=16",
			},
			wantCurrent: "4.1.0",
			wantCompat:  true,
			wantLatest:  "",
			wantUpgrade: false,
		},
		{
			name:        "unresolvable range keeps the declared label",
			declared:    "latest",
			target:      "20.0.0",
			published:   threeMajors,
			wantCurrent: "latest",
			wantCompat:  false,
			wantLatest:  "3.0.0",
			wantUpgrade: true,
		},
		{
			name:        "no published versions",
			declared:    "^1.0.0",
			target:      "20.0.0",
			published:   Published{},
			wantCurrent: "1.0.0",
			wantCompat:  false,
			wantLatest:  "",
			wantUpgrade: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze("pkg", tt.declared, semver.MustParse(tt.target), tt.published, AnalyzeOptions{})
			if got.Name != "pkg" || got.DeclaredRange != tt.declared {
				t.Errorf("Name/DeclaredRange = %q/%q", got.Name, got.DeclaredRange)
			}
			if got.CurrentVersion != tt.wantCurrent {
				t.Errorf("CurrentVersion = %q, want %q", got.CurrentVersion, tt.wantCurrent)
			}
			if got.CurrentCompatible != tt.wantCompat {
				t.Errorf("CurrentCompatible = %v, want %v", got.CurrentCompatible, tt.wantCompat)
			}
			if got.LatestSupported != tt.wantLatest {
				t.Errorf("LatestSupported = %q, want %q", got.LatestSupported, tt.wantLatest)
			}
			if got.UpgradeAvailable != tt.wantUpgrade {
				t.Errorf("UpgradeAvailable = %v, want %v", got.UpgradeAvailable, tt.wantUpgrade)
			}
			if got.Failed() {
				t.Errorf("unexpected error record: %v", got.Err)
			}
		})
	}
}

func TestAnalyzeVerbose(t *testing.T) {
	published := Published{
		"2.0.0": "^12 || >=14.0.0",
		"3.0.0": "^18 || >=20",
	}

	got := Analyze("pkg", "^2.0.0", semver.MustParse("16.0.0"), published, AnalyzeOptions{Verbose: true})
	if got.CurrentEngineSupport != ">=14.0.0" {
		t.Errorf("CurrentEngineSupport = %q, want >=14.0.0", got.CurrentEngineSupport)
	}
	if got.LatestEngineSupport != ">=14.0.0" {
		t.Errorf("LatestEngineSupport = %q, want >=14.0.0", got.LatestEngineSupport)
	}

	got = Analyze("pkg", "3.0.0", semver.MustParse("16.0.0"), published, AnalyzeOptions{Verbose: true})
	if got.CurrentCompatible {
		t.Error("3.0.0 should not support 16.0.0")
	}
	if got.CurrentEngineSupport != "^18 || >=20" {
		t.Errorf("CurrentEngineSupport = %q, want the whole constraint", got.CurrentEngineSupport)
	}

	quiet := Analyze("pkg", "^2.0.0", semver.MustParse("16.0.0"), published, AnalyzeOptions{})
	if quiet.CurrentEngineSupport != "" || quiet.LatestEngineSupport != "" {
		t.Errorf("engine support leaked without verbose: %+v", quiet)
	}
}

func TestAnalyzeUnmatchedFallbackLeavesIncompatible(t *testing.T) {
	published := Published{"1.0.0": ">=10", "2.0.0": ">=12"}
	got := Analyze("pkg", "^9.0.0", semver.MustParse("14.0.0"), published, AnalyzeOptions{Verbose: true})
	if got.CurrentCompatible {
		t.Error("expected incompatible when no version matches the declared range")
	}
	if got.CurrentEngineSupport != "" {
		t.Errorf("CurrentEngineSupport = %q, want empty", got.CurrentEngineSupport)
	}
	if got.LatestSupported != "2.0.0" {
		t.Errorf("LatestSupported = %q, want 2.0.0", got.LatestSupported)
	}
}

func TestAnalyzeIgnoresUnparsableVersions(t *testing.T) {
	published := Published{
		"banana": ">=1",
		"1.0.0":  ">=10",
	}
	got := Analyze("pkg", "1.0.0", semver.MustParse("12.0.0"), published, AnalyzeOptions{})
	if !got.CurrentCompatible {
		t.Error("expected 1.0.0 to be compatible")
	}
}

func TestCurrentVersion(t *testing.T) {
	tests := map[string]string{
		"^2.0.0":     "2.0.0",
		"~1.2":       "1.2.0",
		">=3":        "3.0.0",
		"4.17.21":    "4.17.21",
		"latest":     "latest",
		"*":          "*",
		"git+ssh://": "git+ssh://",
	}
	for declared, want := range tests {
		if got := CurrentVersion(declared); got != want {
			t.Errorf("CurrentVersion(%q) = %q, want %q", declared, got, want)
		}
	}
}

func TestPublishedFromVersions(t *testing.T) {
	versions := []core.Version{
		{Number: "1.0.0"},
		{Number: "2.0.0", Engines: map[string]string{"node": ">=14", "npm": ">=7"}},
	}
	p := PublishedFromVersions(versions, "node")
	if len(p) != 2 || p["1.0.0"] != "" || p["2.0.0"] != ">=14" {
		t.Errorf("PublishedFromVersions(node) = %v", p)
	}
	if got := PublishedFromVersions(versions, "npm")["2.0.0"]; got != ">=7" {
		t.Errorf("PublishedFromVersions(npm)[2.0.0] = %q", got)
	}
}

func TestAnalyzeUpgradeComparesNormalizedVersions(t *testing.T) {
	tests := []struct {
		name        string
		latest      string
		wantUpgrade bool
	}{
		{"prerelease suffix", "2.0.0-rc.1", false},
		{"build metadata", "2.0.0+build.7", false},
		{"newer patch", "2.0.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			published := Published{"1.0.0": ">=10", tt.latest: ">=14"}
			got := Analyze("pkg", "^2.0.0", semver.MustParse("16"), published, AnalyzeOptions{})
			if got.LatestSupported != tt.latest {
				t.Fatalf("LatestSupported = %q, want %q", got.LatestSupported, tt.latest)
			}
			if got.UpgradeAvailable != tt.wantUpgrade {
				t.Errorf("UpgradeAvailable = %v, want %v (current %s)", got.UpgradeAvailable, tt.wantUpgrade, got.CurrentVersion)
			}
		})
	}
}
