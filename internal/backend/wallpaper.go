package backend

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmylchreest/kuntatinte/internal/config"
	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
)

const wallpaperScript = `var allDesktops = desktops();
for (var i = 0; i < allDesktops.length; i++) {
    var d = allDesktops[i];
    d.wallpaperPlugin = "org.kde.image";
    d.currentConfigGroup = Array("Wallpaper", "org.kde.image", "General");
    d.writeConfig("Image", "file://%s");
}`

// ListImages lists the images in folder and remembers it as the wallpapers
// folder. An empty folder uses the configured one.
func (b *Backend) ListImages(folder string) ([]string, error) {
	if folder == "" {
		folder = b.cfg.WallpapersFolder()
	}
	folder = config.ExpandPath(folder)
	images, err := imgutil.ListImages(folder)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(folder); err == nil && info.IsDir() {
		if err := b.cfg.Set(config.SectionPaths, "wallpapers_folder", folder); err != nil {
			b.logger.Warn("could not remember wallpapers folder", "error", err)
		}
	}
	b.logger.Debug("listed wallpapers", "folder", folder, "count", len(images))
	return images, nil
}

// SetAsWallpaper sets the Plasma wallpaper on every desktop, falling back
// to a plasmashell script when plasma-apply-wallpaperimage is missing.
func (b *Backend) SetAsWallpaper(path string) string {
	if err := b.setWallpaper(path); err != nil {
		b.logger.Error("Error setting wallpaper", "error", err)
		return err.Error()
	}
	b.logger.Info("wallpaper set", "path", path)
	return ""
}

func (b *Backend) setWallpaper(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("Image not found: %s", path) //nolint:staticcheck // user-facing message
	}

	if bin, err := b.runner.LookPath("plasma-apply-wallpaperimage"); err == nil {
		return b.run(bin, path)
	}

	bin, err := b.runner.LookPath("qdbus")
	if err != nil {
		return errors.New("neither plasma-apply-wallpaperimage nor qdbus is installed")
	}
	script := fmt.Sprintf(wallpaperScript, path)
	return b.run(bin, "org.kde.plasmashell", "/PlasmaShell", "org.kde.PlasmaShell.evaluateScript", script)
}

func (b *Backend) run(bin string, args ...string) error {
	_, stderr, err := b.runner.Run(b.ctx, bin, args, nil)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return fmt.Errorf("%s: %s", bin, msg)
		}
		return fmt.Errorf("%s: %w", bin, err)
	}
	return nil
}
