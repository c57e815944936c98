package semver

import (
	"errors"
	"slices"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"1.2.3", Version{1, 2, 3}, false},
		{"1.2", Version{1, 2, 0}, false},
		{"7", Version{7, 0, 0}, false},
		{"1.2.3.4", Version{1, 2, 3}, false},
		{"v18.17.1", Version{18, 17, 1}, false},
		{"^2.1", Version{2, 1, 0}, false},
		{"0.0.0", Version{0, 0, 0}, false},
		{"", Version{}, true},
		{"abc", Version{}, true},
		{"99999999999999999999.0.0", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Errorf("expected *ParseError, got %T", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"^1.2.3", "1.2.3", true},
		{">=14", "14.0.0", true},
		{"~4.17", "4.17.0", true},
		{"v20.1.0", "20.1.0", true},
		{"18", "18.0.0", true},
		{"1.2.3-beta.1", "1.2.3", true},
		{"latest", "", false},
		{"not-a-version", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Coerce(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Coerce(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("Coerce(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCoerceIdempotent(t *testing.T) {
	for _, v := range []Version{{0, 0, 0}, {1, 2, 3}, {10, 0, 7}, {123, 45, 6789}} {
		once, err := Normalize(v.String())
		if err != nil {
			t.Fatalf("Normalize(%s) error = %v", v, err)
		}
		first, ok := Coerce(once.String())
		if !ok {
			t.Fatalf("Coerce(%s) failed", once)
		}
		again, err := Normalize(first.String())
		if err != nil {
			t.Fatalf("Normalize(%s) error = %v", first, err)
		}
		second, ok := Coerce(again.String())
		if !ok {
			t.Fatalf("Coerce(%s) failed", again)
		}
		if first != second || first != v {
			t.Errorf("not idempotent: %s -> %s -> %s", v, first, second)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.2.0", "1.10.0", -1},
		{"1.2.10", "1.2.9", 1},
	}

	for _, tt := range tests {
		if got := MustParse(tt.a).Compare(MustParse(tt.b)); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		version    string
		constraint string
		want       bool
	}{
		{"16.0.0", ">=14.0.0", true},
		{"14.0.0", ">=14.0.0", true},
		{"13.9.9", ">=14.0.0", false},
		{"20.0.0", ">= 18", true},
		{"1.9.9", "^1.5.0", true},
		{"1.5.0", "^1.5.0", true},
		{"1.4.9", "^1.5.0", false},
		{"2.0.0", "^1.5.0", false},
		{"1.5.1", "^1.5", true},
		{"14.2.0", "^12 || ^14 || >=16", true},
		{"13.0.0", "^12 || ^14 || >=16", false},
		{"18.0.0", "^12 || ^14 || >=16", true},
		{"1.0.0", "1.0.0", true},
		{"1.0.0", " 1.0.0 ", true},
		{"1.0", "1.0.0", false},
		{"1.0.0", "~1.0.0", false},
		{"1.0.0", ">=garbage", false},
		{"1.0.0", "^", false},
		{"garbage", ">=1.0.0", false},
		{"1.0.0", "||", false},
		{"1.0.0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.version+" "+tt.constraint, func(t *testing.T) {
			if got := Satisfies(tt.version, tt.constraint); got != tt.want {
				t.Errorf("Satisfies(%q, %q) = %v, want %v", tt.version, tt.constraint, got, tt.want)
			}
		})
	}
}

func TestSatisfiesMatchesCompare(t *testing.T) {
	versions := []string{"0.0.1", "1.0.0", "1.2.3", "1.3.0", "2.0.0", "10.1.1"}
	for _, v := range versions {
		for _, x := range versions {
			want := Compare(MustParse(v), MustParse(x)) >= 0
			if got := Satisfies(v, ">="+x); got != want {
				t.Errorf("Satisfies(%s, >=%s) = %v, want %v", v, x, got, want)
			}
		}
	}
}

func TestSatisfiesVersion(t *testing.T) {
	if !SatisfiesVersion(MustParse("16"), ">=14") {
		t.Error("expected 16.0.0 to satisfy >=14")
	}
	if !SatisfiesVersion(MustParse("16"), "16.0.0") {
		t.Error("expected 16.0.0 to satisfy exact 16.0.0")
	}
}

func TestSplitAlternatives(t *testing.T) {
	got := SplitAlternatives(" ^12 ||^14|| >=16 || ")
	want := []string{"^12", "^14", ">=16"}
	if !slices.Equal(got, want) {
		t.Errorf("SplitAlternatives = %v, want %v", got, want)
	}
}

func TestSortDescending(t *testing.T) {
	input := []string{"1.0.0", "2.1.0", "2.0.5"}
	got := SortDescending(input)
	want := []string{"2.1.0", "2.0.5", "1.0.0"}
	if !slices.Equal(got, want) {
		t.Errorf("SortDescending = %v, want %v", got, want)
	}
	if input[0] != "1.0.0" {
		t.Error("SortDescending modified its input")
	}
}

func TestSortDescendingStable(t *testing.T) {
	got := SortDescending([]string{"1.0", "1.0.0", "3.0.0", "1"})
	want := []string{"3.0.0", "1.0", "1.0.0", "1"}
	if !slices.Equal(got, want) {
		t.Errorf("SortDescending = %v, want %v", got, want)
	}
}

func TestRCompareInvalid(t *testing.T) {
	if got := RCompare("nope", "1.0.0"); got != 0 {
		t.Errorf("RCompare(nope, 1.0.0) = %d, want 0", got)
	}
	if got := RCompare("1.0.0", "nope"); got != 0 {
		t.Errorf("RCompare(1.0.0, nope) = %d, want 0", got)
	}
	if got := RCompare("1.0.0", "2.0.0"); got != 1 {
		t.Errorf("RCompare(1.0.0, 2.0.0) = %d, want 1", got)
	}
}
