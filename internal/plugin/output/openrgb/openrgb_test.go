package openrgb

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	plugintesting "github.com/jmylchreest/kuntatinte/internal/plugin/output/testing"
)

func TestOpenRGBPlugin(t *testing.T) {
	p := New(common.WithRunner(common.NewMockProcessRunner()))
	plugintesting.TestBasicInterface(t, p, "openrgb")
	plugintesting.TestPreExecuteSkips(t, p)
	plugintesting.TestOptionalInterfaces(t, p, false, false, false)
}

func TestValidateHex(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "ff0000", want: "ff0000"},
		{in: "#3DAEE9", want: "3DAEE9"},
		{in: "", wantErr: ErrNoAccent},
		{in: "#", wantErr: ErrNoAccent},
		{in: "fff", wantErr: ErrInvalidHex},
		{in: "gg0000", wantErr: ErrInvalidHex},
		{in: "ff00001", wantErr: ErrInvalidHex},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateHex(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateHex(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateHex(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	t.Run("runs openrgb", func(t *testing.T) {
		runner := common.NewMockProcessRunner("openrgb")
		p := New(common.WithRunner(runner))

		if err := output.Execute(context.Background(), p, output.Colours{"accent": "#3daee9"}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		call, ok := runner.LastRun()
		if !ok {
			t.Fatal("openrgb was not run")
		}
		want := []string{"--noautoconnect", "-c", "3daee9", "-m", "direct", "-b", "100"}
		if call.Path != "openrgb" || !slices.Equal(call.Args, want) {
			t.Errorf("ran %s", call)
		}
	})

	t.Run("command failure", func(t *testing.T) {
		runner := common.NewErrorMockProcessRunner("  no devices  \n", "openrgb")
		p := New(common.WithRunner(runner))

		err := p.Apply(context.Background(), output.Colours{"accent": "#3daee9"})
		if err == nil || err.Error() != "OpenRGB command failed: no devices" {
			t.Errorf("Apply() error = %v", err)
		}
	})

	t.Run("invalid colour is not sent", func(t *testing.T) {
		runner := common.NewMockProcessRunner("openrgb")
		p := New(common.WithRunner(runner))

		err := p.Apply(context.Background(), output.Colours{"accent": "blue"})
		if !errors.Is(err, ErrInvalidHex) {
			t.Errorf("Apply() error = %v", err)
		}
		if len(runner.Runs) != 0 {
			t.Error("openrgb should not run for an invalid colour")
		}
	})

	t.Run("skipped when missing", func(t *testing.T) {
		p := New(common.WithRunner(common.NewMockProcessRunner()))
		err := output.Execute(context.Background(), p, output.Colours{"accent": "#3daee9"})
		if err == nil || !strings.Contains(err.Error(), ErrNotInstalled.Error()) {
			t.Errorf("Execute() error = %v", err)
		}
	})
}
