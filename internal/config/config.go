// Package config loads and saves the kuntatinte configuration file,
// ~/.config/kuntatinte/config.toml, falling back to built-in defaults for
// anything the file does not set.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
)

// AppName is used for the configuration and cache directory names.
const AppName = "kuntatinte"

// DefaultPanelWidth is the width of settings panels without their own entry.
const DefaultPanelWidth = 280

// Section names.
const (
	SectionPaths = "paths"
	SectionCache = "cache"
	SectionUI    = "ui"

	// SectionCommands holds the command lines used to restart applications
	// after their theme changes.
	SectionCommands = "commands"
)

// Defaults returns the built-in configuration, section by section.
func Defaults() map[string]map[string]any {
	return map[string]map[string]any{
		SectionPaths: {
			"wallpapers_folder":     "",
			"starship_config":       "~/.config/starship.toml",
			"fastfetch_config_dir":  "~/.config/fastfetch",
			"fastfetch_custom_logo": "",
			"ulauncher_theme_dir":   "~/.config/ulauncher/user-themes/kuntatinte",
		},
		SectionCache: {
			"cache_dir": AppName,
		},
		SectionCommands: {
			"terminal":  "kitty",
			"ulauncher": "GDK_BACKEND=x11 ulauncher --hide-window --no-window-shadow",
		},
		SectionUI: {
			"debug_ui":            false,
			"left_panel_visible":  true,
			"right_panel_visible": false,
			"min_height":          int64(700),
			"panel_width": map[string]any{
				"central_panel":           int64(400),
				"wallpapers":              int64(250),
				"fastfetch":               int64(280),
				"starship":                int64(280),
				"ulauncher":               int64(380),
				"kuntatinte_color_scheme": int64(520),
			},
		},
	}
}

// Config is the loaded configuration. Values missing from the file resolve
// through Defaults. It is safe for concurrent use.
type Config struct {
	path   string
	mu     sync.RWMutex
	values map[string]map[string]any
	logger hclog.Logger
}

// DefaultDir returns ~/.config/kuntatinte, honouring XDG_CONFIG_HOME.
func DefaultDir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, AppName)
	}
	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".config", AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// New returns a configuration holding only the defaults, saved to path.
func New(path string, logger hclog.Logger) *Config {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if path == "" {
		path = DefaultPath()
	}
	return &Config{path: path, values: make(map[string]map[string]any), logger: logger}
}

// Load reads the configuration at path. An empty path means DefaultPath.
// A missing file is not an error; an unreadable one is logged and ignored
// so the defaults still apply.
func Load(path string, logger hclog.Logger) (*Config, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if path == "" {
		path = DefaultPath()
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	c := &Config{path: expanded, values: make(map[string]map[string]any), logger: logger}

	data, err := os.ReadFile(expanded) // #nosec G304 - user config file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		logger.Warn("could not load config, using defaults", "path", expanded, "error", err)
		return c, nil
	}
	for section, v := range raw {
		if table, ok := v.(map[string]any); ok {
			c.values[section] = table
		}
	}
	return c, nil
}

// Path returns the config file path.
func (c *Config) Path() string { return c.path }

// Dir returns the directory holding the config file.
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// TemplatesDir returns the directory of user template overrides.
func (c *Config) TemplatesDir() string { return filepath.Join(c.Dir(), "templates") }

// Get returns a value from the file, then from the defaults, then def.
func (c *Config) Get(section, key string, def any) any {
	c.mu.RLock()
	v, ok := c.values[section][key]
	c.mu.RUnlock()
	if ok {
		return v
	}
	if v, ok := Defaults()[section][key]; ok {
		return v
	}
	return def
}

// GetString returns a value formatted as a string.
func (c *Config) GetString(section, key, def string) string {
	switch v := c.Get(section, key, def).(type) {
	case string:
		return v
	case nil:
		return def
	default:
		return fmt.Sprint(v)
	}
}

// GetBool returns a boolean value. Non-boolean values yield def.
func (c *Config) GetBool(section, key string, def bool) bool {
	if v, ok := c.Get(section, key, def).(bool); ok {
		return v
	}
	return def
}

// GetInt returns an integer value. Non-numeric values yield def.
func (c *Config) GetInt(section, key string, def int) int {
	if n, ok := toInt(c.Get(section, key, def)); ok {
		return n
	}
	return def
}

// Set stores a value and saves the file.
func (c *Config) Set(section, key string, value any) error {
	c.SetNoSave(section, key, value)
	return c.Save()
}

// SetNoSave stores a value without touching the file.
func (c *Config) SetNoSave(section, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values[section] == nil {
		c.values[section] = make(map[string]any)
	}
	c.values[section][key] = value
}

// Save writes the values set in this config (not the defaults) to the file.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	c.mu.RLock()
	data, err := encode(c.values)
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	c.logger.Debug("saved config", "path", c.path)
	return nil
}

// Init writes a config file holding every default when none exists yet.
// It reports whether a file was written.
func (c *Config) Init() (bool, error) {
	if _, err := os.Stat(c.path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(c.Dir(), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := encode(Defaults())
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	c.logger.Info("generated default config", "path", c.path)
	return true, nil
}

func encode(values map[string]map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# Kuntatinte Configuration File\n\n")
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(values); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Sections returns the section names present in the file or the defaults.
func (c *Config) Sections() []string {
	seen := make(map[string]bool)
	for s := range Defaults() {
		seen[s] = true
	}
	c.mu.RLock()
	for s := range c.values {
		seen[s] = true
	}
	c.mu.RUnlock()
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ExpandPath expands a leading ~ in a configured path.
func ExpandPath(p string) string {
	if p == "" {
		return ""
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}

// PathValue returns a [paths] entry with ~ expanded, or "" if unset.
func (c *Config) PathValue(key string) string {
	return ExpandPath(c.GetString(SectionPaths, key, ""))
}

// StarshipConfig returns the starship.toml path.
func (c *Config) StarshipConfig() string { return c.PathValue("starship_config") }

// FastfetchConfigDir returns the fastfetch configuration directory.
func (c *Config) FastfetchConfigDir() string { return c.PathValue("fastfetch_config_dir") }

// FastfetchCustomLogo returns the custom logo path when one is configured
// and exists.
func (c *Config) FastfetchCustomLogo() string {
	p := c.PathValue("fastfetch_custom_logo")
	if p == "" {
		return ""
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// UlauncherThemeDir returns the directory the ulauncher theme is written to.
func (c *Config) UlauncherThemeDir() string {
	if p := c.PathValue("ulauncher_theme_dir"); p != "" && p != "." {
		return p
	}
	return ExpandPath("~/.config/ulauncher/user-themes/kuntatinte")
}

// WallpapersFolder returns the wallpaper folder, defaulting to ~/Pictures
// (or the home directory when that does not exist).
func (c *Config) WallpapersFolder() string {
	if p := c.PathValue("wallpapers_folder"); p != "" && p != "." {
		return p
	}
	home := ExpandPath("~")
	pictures := filepath.Join(home, "Pictures")
	if info, err := os.Stat(pictures); err == nil && info.IsDir() {
		return pictures
	}
	return home
}

// CacheDir returns the cache directory. Relative values live under ~/.cache.
func (c *Config) CacheDir() string {
	v := ExpandPath(c.GetString(SectionCache, "cache_dir", AppName))
	if filepath.IsAbs(v) {
		return v
	}
	return filepath.Join(ExpandPath("~"), ".cache", v)
}

// Command returns the restart command line configured for name.
func (c *Config) Command(name string) string {
	return strings.TrimSpace(c.GetString(SectionCommands, name, ""))
}

// DebugUI reports whether UI debug logging is on.
func (c *Config) DebugUI() bool { return c.GetBool(SectionUI, "debug_ui", false) }

// LeftPanelVisible reports whether the wallpaper panel starts visible.
func (c *Config) LeftPanelVisible() bool { return c.GetBool(SectionUI, "left_panel_visible", true) }

// RightPanelVisible reports whether the settings panel starts visible.
func (c *Config) RightPanelVisible() bool { return c.GetBool(SectionUI, "right_panel_visible", false) }

// MinHeight returns the minimum window height.
func (c *Config) MinHeight() int { return c.GetInt(SectionUI, "min_height", 700) }

// PanelWidth returns the width of a named panel. Names are lowercased with
// spaces replaced by underscores; unknown names get DefaultPanelWidth.
func (c *Config) PanelWidth(name string) int {
	key := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	widths, ok := c.Get(SectionUI, "panel_width", nil).(map[string]any)
	if !ok {
		return DefaultPanelWidth
	}
	if n, ok := toInt(widths[key]); ok {
		return n
	}
	if n, ok := toInt(widths["fastfetch"]); ok {
		return n
	}
	return DefaultPanelWidth
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
