// Package output provides the interface and registry for integration plugins.
// An integration takes a set of named colours and writes them into another
// application's configuration.
package output

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// OpacitySuffix marks keys in Colours that carry an opacity (0-100) for the
// colour key they extend, e.g. "bg_color_opacity".
const OpacitySuffix = "_opacity"

// Colours maps integration colour keys to "#rrggbb" values.
type Colours map[string]string

// Clone returns a copy of c.
func (c Colours) Clone() Colours {
	return maps.Clone(c)
}

// NonEmpty returns a copy of c without empty values.
func (c Colours) NonEmpty() Colours {
	out := make(Colours, len(c))
	for k, v := range c {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Opacity returns the opacity stored for key, or def when it is missing or
// not a number. The result is clamped to 0..100.
func (c Colours) Opacity(key string, def int) int {
	v, ok := c[key+OpacitySuffix]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return min(max(n, 0), 100)
}

// SetOpacity stores an opacity for key.
func (c Colours) SetOpacity(key string, opacity int) {
	c[key+OpacitySuffix] = strconv.Itoa(opacity)
}

// WithDefaults returns the colours for keys, taking each from c when set and
// from defaults otherwise. Opacity entries in c are carried over.
func (c Colours) WithDefaults(keys []string, defaults Colours) Colours {
	out := make(Colours, len(keys))
	for _, k := range keys {
		if v := c[k]; v != "" {
			out[k] = v
		} else {
			out[k] = defaults[k]
		}
	}
	for k, v := range c {
		if strings.HasSuffix(k, OpacitySuffix) {
			out[k] = v
		}
	}
	return out
}

// Plugin represents an integration that applies colours to an application.
type Plugin interface {
	// Name returns the plugin's name (e.g., "starship", "ulauncher").
	Name() string

	// Description returns a human-readable description of the plugin.
	Description() string

	// Installed reports whether the target application is available.
	Installed() bool

	// DefaultColours returns the colours used for keys the caller leaves empty.
	DefaultColours() Colours

	// Keys returns the colour keys the plugin understands, in display order.
	Keys() []string

	// Apply writes the colours into the application's configuration.
	Apply(ctx context.Context, colours Colours) error
}

// Restorer is implemented by plugins that keep a backup of what Apply replaced.
type Restorer interface {
	Restore(ctx context.Context) error
}

// ColourLoader is implemented by plugins that can read the colours currently
// applied.
type ColourLoader interface {
	Load() (Colours, error)
}

// Refresher is implemented by plugins whose application must be restarted
// or reloaded to pick up new colours.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// PreExecuteHook is implemented by plugins that check their environment
// before Apply. Returning skip=true skips the plugin with the given reason.
type PreExecuteHook interface {
	PreExecute(ctx context.Context) (skip bool, reason string, err error)
}

// PostExecuteHook is implemented by plugins that act after a successful Apply.
type PostExecuteHook interface {
	PostExecute(ctx context.Context) error
}

// SkipError reports a plugin skipped by its PreExecute hook.
type SkipError struct {
	Plugin string
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s skipped: %s", e.Plugin, e.Reason)
}

// Execute runs a plugin's hooks around Apply.
func Execute(ctx context.Context, p Plugin, colours Colours) error {
	if hook, ok := p.(PreExecuteHook); ok {
		skip, reason, err := hook.PreExecute(ctx)
		if err != nil {
			return fmt.Errorf("%s pre-execute failed: %w", p.Name(), err)
		}
		if skip {
			return &SkipError{Plugin: p.Name(), Reason: reason}
		}
	}

	if err := p.Apply(ctx, colours); err != nil {
		return err
	}

	if hook, ok := p.(PostExecuteHook); ok {
		if err := hook.PostExecute(ctx); err != nil {
			return fmt.Errorf("%s post-execute failed: %w", p.Name(), err)
		}
	}
	return nil
}

// Registry holds all registered integration plugins.
type Registry struct {
	plugins map[string]Plugin
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
	}
}

// Register adds a plugin to the registry.
func (r *Registry) Register(plugin Plugin) {
	r.plugins[plugin.Name()] = plugin
}

// Get retrieves a plugin by name.
func (r *Registry) Get(name string) (Plugin, bool) {
	plugin, ok := r.plugins[name]
	return plugin, ok
}

// List returns all registered plugin names, sorted.
func (r *Registry) List() []string {
	return slices.Sorted(maps.Keys(r.plugins))
}

// All returns a copy of the registered plugins.
func (r *Registry) All() map[string]Plugin {
	return maps.Clone(r.plugins)
}
