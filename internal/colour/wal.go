package colour

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ErrWalCacheMissing is returned when no pywal colors.json exists.
var ErrWalCacheMissing = errors.New("wal colour cache not found")

// CommandRunner runs external programs. common.ProcessRunner satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
	LookPath(file string) (string, error)
}

// walColours is the subset of pywal's colors.json that is read.
type walColours struct {
	Wallpaper string            `json:"wallpaper"`
	Special   map[string]string `json:"special"`
	Colors    map[string]string `json:"colors"`
}

// DefaultWalCache returns ~/.cache/wal/colors.json.
func DefaultWalCache() string {
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".cache", "wal", "colors.json")
	}
	return filepath.Join(home, ".cache", "wal", "colors.json")
}

// ReadWalCache reads color0..color15 from a pywal colors.json file. Missing
// slots are skipped, so the result can be shorter than 16.
func ReadWalCache(path string) ([]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 - cache path under the user's home
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrWalCacheMissing, path)
		}
		return nil, fmt.Errorf("failed to read colors file: %w", err)
	}

	var wal walColours
	if err := json.Unmarshal(data, &wal); err != nil {
		return nil, fmt.Errorf("Error reading colors file: %w", err) //nolint:staticcheck // user-facing message
	}

	colors := make([]string, 0, ANSIPaletteSize)
	for i := range ANSIPaletteSize {
		if c, ok := wal.Colors[fmt.Sprintf("color%d", i)]; ok {
			if n, ok := Normalize(c); ok {
				colors = append(colors, n)
			}
		}
	}
	return colors, nil
}

// RunWal asks the pywal CLI to generate colours for an image without
// touching the wallpaper, terminals or reload hooks. The result lands in the
// wal cache.
func RunWal(ctx context.Context, runner CommandRunner, imagePath string) error {
	bin, err := runner.LookPath("wal")
	if err != nil {
		return fmt.Errorf("pywal is not installed: %w", err)
	}
	stdout, stderr, err := runner.Run(ctx, bin, []string{"-n", "-s", "-t", "-e", "-q", "-i", imagePath}, nil)
	if err != nil {
		out := strings.TrimSpace(string(stderr) + string(stdout))
		return fmt.Errorf("pywal failed: %w: %s", err, out)
	}
	return nil
}
