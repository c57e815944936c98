package core

import (
	"context"
	"slices"
	"testing"
)

type stubRegistry struct{ baseURL string }

func (s *stubRegistry) Ecosystem() string { return "stub" }
func (s *stubRegistry) Engine() string    { return "stub" }
func (s *stubRegistry) FetchVersions(context.Context, string) ([]Version, error) {
	return nil, nil
}
func (s *stubRegistry) URLs() URLBuilder { return &BaseURLs{} }

func TestRegisterAndNew(t *testing.T) {
	Register("stub", "https://stub.example", func(baseURL string, _ *Client) Registry {
		return &stubRegistry{baseURL: baseURL}
	})

	reg, err := New("stub", "", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := reg.(*stubRegistry).baseURL; got != "https://stub.example" {
		t.Errorf("baseURL = %q, want default", got)
	}

	reg, err = New("stub", "https://mirror.example", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := reg.(*stubRegistry).baseURL; got != "https://mirror.example" {
		t.Errorf("baseURL = %q, want override", got)
	}

	if !slices.Contains(SupportedEcosystems(), "stub") {
		t.Errorf("SupportedEcosystems() = %v, missing stub", SupportedEcosystems())
	}
	if DefaultURL("stub") != "https://stub.example" {
		t.Errorf("DefaultURL = %q", DefaultURL("stub"))
	}
}

func TestNewUnknownEcosystem(t *testing.T) {
	if _, err := New("nope", "", nil); err == nil {
		t.Error("expected error for unknown ecosystem")
	}
}

func TestVersionEngine(t *testing.T) {
	v := Version{Number: "2.0.0", Engines: map[string]string{"node": ">=14.0.0"}}
	if got := v.Engine("node"); got != ">=14.0.0" {
		t.Errorf("Engine(node) = %q", got)
	}
	if got := v.Engine("bun"); got != "" {
		t.Errorf("Engine(bun) = %q, want empty", got)
	}
	if got := (Version{}).Engine("node"); got != "" {
		t.Errorf("Engine on nil map = %q, want empty", got)
	}
}
