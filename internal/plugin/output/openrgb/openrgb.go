// Package openrgb sets RGB peripherals to the accent colour through the
// OpenRGB command line client.
package openrgb

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
)

const binary = "openrgb"

// Messages returned to the user.
var (
	ErrNoAccent     = errors.New("No accent color provided")                                 //nolint:staticcheck // user-facing message
	ErrInvalidHex   = errors.New("Invalid hex color format. Must be 6 hexadecimal digits.") //nolint:staticcheck // user-facing message
	ErrNotInstalled = errors.New("OpenRGB is not installed or not in PATH")                 //nolint:staticcheck // user-facing message
)

// Plugin implements output.Plugin for OpenRGB.
type Plugin struct {
	runner common.ProcessRunner
	logger hclog.Logger
}

// New creates the OpenRGB plugin.
func New(opts ...common.Option) *Plugin {
	o := common.ApplyOptions(opts...)
	return &Plugin{runner: o.Runner, logger: o.Logger.Named("openrgb")}
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return "openrgb" }

// Description returns the plugin description.
func (p *Plugin) Description() string { return "Set RGB devices to the accent colour with OpenRGB" }

// Installed reports whether the openrgb client is on PATH.
func (p *Plugin) Installed() bool {
	_, err := p.runner.LookPath(binary)
	return err == nil
}

// DefaultColours returns the default accent.
func (p *Plugin) DefaultColours() output.Colours {
	return output.Colours{"accent": "#3daee9"}
}

// Keys returns the single accent key.
func (p *Plugin) Keys() []string { return []string{"accent"} }

// PreExecute skips the plugin when openrgb is not installed.
func (p *Plugin) PreExecute(_ context.Context) (skip bool, reason string, err error) {
	if !p.Installed() {
		return true, ErrNotInstalled.Error(), nil
	}
	return false, "", nil
}

// Apply sets every device to the accent in direct mode at full brightness.
func (p *Plugin) Apply(ctx context.Context, colours output.Colours) error {
	hex, err := ValidateHex(colours["accent"])
	if err != nil {
		return err
	}

	args := []string{"--noautoconnect", "-c", hex, "-m", "direct", "-b", "100"}
	_, stderr, err := p.runner.Run(ctx, binary, args, nil)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ErrNotInstalled
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || len(stderr) > 0 {
			return fmt.Errorf("OpenRGB command failed: %s", strings.TrimSpace(string(stderr))) //nolint:staticcheck // user-facing message
		}
		return fmt.Errorf("Unexpected error applying OpenRGB: %w", err) //nolint:staticcheck // user-facing message
	}

	p.logger.Info("OpenRGB accent applied successfully", "color", hex)
	return nil
}

// ValidateHex accepts six hex digits with or without a leading # and
// returns them without it.
func ValidateHex(accent string) (string, error) {
	accent = strings.TrimPrefix(strings.TrimSpace(accent), "#")
	if accent == "" {
		return "", ErrNoAccent
	}
	if len(accent) != 6 || strings.Trim(accent, "0123456789abcdefABCDEF") != "" {
		return "", ErrInvalidHex
	}
	return accent, nil
}
