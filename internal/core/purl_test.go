package core

import (
	"testing"
)

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		input     string
		wantEco   string
		wantName  string
		wantRange string
		wantErr   bool
	}{
		{"pkg:npm/lodash@4.17.21", "npm", "lodash", "4.17.21", false},
		{"pkg:npm/%40babel/core@7.24.0", "npm", "@babel/core", "7.24.0", false},
		{"pkg:npm/express@5.0.0", "npm", "express", "5.0.0", false},
		{"pkg:npm/lodash", "", "", "", true},
		{"npm/lodash@4.17.21", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req, err := ParseRequirement(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRequirement(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if req.Ecosystem != tt.wantEco {
				t.Errorf("Ecosystem = %q, want %q", req.Ecosystem, tt.wantEco)
			}
			if req.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", req.Name, tt.wantName)
			}
			if req.Range != tt.wantRange {
				t.Errorf("Range = %q, want %q", req.Range, tt.wantRange)
			}
		})
	}
}
