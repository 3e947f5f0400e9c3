// Package manager owns the integration registry and decides which
// integrations are enabled.
package manager

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/colorscheme"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/common"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/fastfetch"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/openrgb"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/starship"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/ulauncher"
)

// Environment variables read by WithEnvConfig.
const (
	EnvDisabledPlugins = "KUNTATINTE_DISABLED_PLUGINS"
	EnvEnabledPlugins  = "KUNTATINTE_ENABLED_PLUGINS"
)

const pluginType = "integration"

// Config holds plugin enable/disable lists.
type Config struct {
	// DisabledPlugins is a list of plugin names to disable.
	// Either "name" or "integration:name"; "all" disables everything.
	DisabledPlugins []string

	// EnabledPlugins, when set, switches to whitelist mode.
	EnabledPlugins []string
}

// Builder provides a fluent interface for constructing a Manager.
type Builder struct {
	config   Config
	appCfg   *config.Config
	registry *output.Registry
	opts     []common.Option
	useEnv   bool
}

// NewBuilder creates a new Manager builder with default settings.
func NewBuilder() *Builder {
	return &Builder{
		registry: output.NewRegistry(),
	}
}

// WithConfig sets the enable/disable lists.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithAppConfig sets the application configuration the integrations read
// their paths from.
func (b *Builder) WithAppConfig(cfg *config.Config) *Builder {
	b.appCfg = cfg
	return b
}

// WithEnvConfig reads KUNTATINTE_DISABLED_PLUGINS and
// KUNTATINTE_ENABLED_PLUGINS at Build time.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithPluginOptions passes options (runner, logger) to every built-in plugin.
func (b *Builder) WithPluginOptions(opts ...common.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// WithCustomRegistry replaces the registry (useful for testing).
func (b *Builder) WithCustomRegistry(reg *output.Registry) *Builder {
	b.registry = reg
	return b
}

// Build constructs the Manager and registers the built-in integrations.
func (b *Builder) Build() *Manager {
	cfg := b.config
	if b.useEnv {
		if disabled := os.Getenv(EnvDisabledPlugins); disabled != "" {
			cfg.DisabledPlugins = parsePluginList(disabled)
		}
		if enabled := os.Getenv(EnvEnabledPlugins); enabled != "" {
			cfg.EnabledPlugins = parsePluginList(enabled)
		}
	}

	appCfg := b.appCfg
	if appCfg == nil {
		appCfg = config.New("", nil)
	}

	m := &Manager{
		config:   cfg,
		registry: b.registry,
	}
	m.registerBuiltinPlugins(appCfg, b.opts)
	return m
}

// Manager manages plugin enable/disable state and owns the registry.
type Manager struct {
	config   Config
	registry *output.Registry
}

func (m *Manager) registerBuiltinPlugins(cfg *config.Config, opts []common.Option) {
	for _, p := range []output.Plugin{
		starship.New(cfg, opts...),
		fastfetch.New(cfg, opts...),
		ulauncher.New(cfg, opts...),
		openrgb.New(opts...),
		colorscheme.New(cfg, opts...),
	} {
		// A custom registry may already hold a replacement.
		if _, ok := m.registry.Get(p.Name()); ok {
			continue
		}
		m.registry.Register(p)
	}
}

// Registry returns the plugin registry.
func (m *Manager) Registry() *output.Registry {
	return m.registry
}

// Get retrieves a plugin by name, enabled or not.
func (m *Manager) Get(name string) (output.Plugin, bool) {
	return m.registry.Get(name)
}

// Lookup retrieves an enabled plugin by name.
func (m *Manager) Lookup(name string) (output.Plugin, error) {
	p, ok := m.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown integration: %s", name)
	}
	if !m.IsEnabled(p) {
		return nil, fmt.Errorf("integration %s is disabled", name)
	}
	return p, nil
}

// IsEnabled reports whether a plugin is enabled. Plugins are enabled unless
// disabled or left out of a whitelist.
func (m *Manager) IsEnabled(p output.Plugin) bool {
	return m.isEnabled(p.Name())
}

func (m *Manager) isEnabled(name string) bool {
	fullName := pluginType + ":" + name
	matches := func(entry string) bool { return entry == name || entry == fullName }

	if slices.Contains(m.config.DisabledPlugins, "all") {
		return false
	}
	if slices.ContainsFunc(m.config.DisabledPlugins, matches) {
		return false
	}
	if len(m.config.EnabledPlugins) == 0 || slices.Contains(m.config.EnabledPlugins, "all") {
		return true
	}
	return slices.ContainsFunc(m.config.EnabledPlugins, matches)
}

// Enabled returns the enabled plugins keyed by name.
func (m *Manager) Enabled() map[string]output.Plugin {
	enabled := make(map[string]output.Plugin)
	for name, p := range m.registry.All() {
		if m.IsEnabled(p) {
			enabled[name] = p
		}
	}
	return enabled
}

// List returns the names of enabled plugins, sorted.
func (m *Manager) List() []string {
	names := []string{}
	for _, name := range m.registry.List() {
		if m.isEnabled(name) {
			names = append(names, name)
		}
	}
	return names
}

// Config returns the current configuration.
func (m *Manager) Config() Config {
	return m.config
}

// UpdateConfig replaces the configuration without recreating plugins.
func (m *Manager) UpdateConfig(cfg Config) {
	m.config = cfg
}

// SetDisabled disables a plugin.
func (m *Manager) SetDisabled(name string) {
	fullName := pluginType + ":" + name
	m.config.EnabledPlugins = slices.DeleteFunc(m.config.EnabledPlugins, func(e string) bool {
		return e == name || e == fullName
	})
	if !slices.Contains(m.config.DisabledPlugins, fullName) {
		m.config.DisabledPlugins = append(m.config.DisabledPlugins, fullName)
	}
}

// SetEnabled enables a plugin. In whitelist mode it is added to the list.
func (m *Manager) SetEnabled(name string) {
	fullName := pluginType + ":" + name
	m.config.DisabledPlugins = slices.DeleteFunc(m.config.DisabledPlugins, func(e string) bool {
		return e == name || e == fullName
	})
	if len(m.config.EnabledPlugins) > 0 && !slices.Contains(m.config.EnabledPlugins, fullName) {
		m.config.EnabledPlugins = append(m.config.EnabledPlugins, fullName)
	}
}

// parsePluginList parses a comma-separated list of plugin names.
func parsePluginList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
