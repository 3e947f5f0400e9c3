package security

import (
	"path/filepath"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "scheme name", input: "KuntatinteDark", wantErr: false},
		{name: "with spaces", input: "Breeze Dark", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
		{name: "dot dot", input: "..", wantErr: true},
		{name: "slash", input: "../dark", wantErr: true},
		{name: "backslash", input: `a\b`, wantErr: true},
		{name: "flag", input: "--help", wantErr: true},
		{name: "nul", input: "dark\x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	base := t.TempDir()
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "simple", path: "starship.toml", wantErr: false},
		{name: "nested", path: "autogen_rules/dark.yaml", wantErr: false},
		{name: "empty", path: "", wantErr: true},
		{name: "traversal", path: "../../etc/passwd", wantErr: true},
		{name: "absolute", path: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path, base)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWithin(t *testing.T) {
	base := t.TempDir()
	if err := ValidateWithin(filepath.Join(base, "a", "b.png"), base); err != nil {
		t.Errorf("nested path rejected: %v", err)
	}
	if err := ValidateWithin(base, base); err != nil {
		t.Errorf("base itself rejected: %v", err)
	}
	if err := ValidateWithin(base+"-other/x.png", base); err == nil {
		t.Error("sibling directory with a shared prefix accepted")
	}
}

func TestSafeUint8(t *testing.T) {
	tests := []struct {
		in   int
		want uint8
	}{
		{in: -5, want: 0},
		{in: 0, want: 0},
		{in: 128, want: 128},
		{in: 255, want: 255},
		{in: 300, want: 255},
	}
	for _, tt := range tests {
		if got := SafeUint8(tt.in); got != tt.want {
			t.Errorf("SafeUint8(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
