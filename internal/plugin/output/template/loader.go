// Package template loads integration templates, preferring user overrides
// in ~/.config/kuntatinte/templates/{plugin}/ over the copies embedded in
// the binary.
package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/jmylchreest/kuntatinte/internal/security"
)

// Logger is a simple interface for logging messages.
type Logger interface {
	Printf(format string, v ...any)
}

// ErrTemplateExists is returned by DumpTemplate when a custom copy is
// already present and force is not set.
var ErrTemplateExists = errors.New("custom template already exists")

// Loader resolves the templates of one plugin.
type Loader struct {
	pluginName string
	embedded   fs.FS
	customBase string
	logger     Logger
}

// DefaultCustomBase returns ~/.config/kuntatinte/templates.
func DefaultCustomBase() string {
	home, err := homedir.Dir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ".config", "kuntatinte", "templates")
}

// New creates a loader for pluginName backed by the embedded filesystem.
func New(pluginName string, embedded fs.FS) *Loader {
	return &Loader{
		pluginName: pluginName,
		embedded:   embedded,
		customBase: DefaultCustomBase(),
	}
}

// WithCustomBase sets the directory holding per-plugin override directories.
// An empty base keeps the current one.
func (l *Loader) WithCustomBase(customBase string) *Loader {
	if customBase != "" {
		l.customBase = customBase
	}
	return l
}

// WithLogger logs which copy of each template is used.
func (l *Loader) WithLogger(logger Logger) *Loader {
	l.logger = logger
	return l
}

func (l *Loader) logf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Printf(format, v...)
	}
}

// Load reads a template, checking for a custom override first. It reports
// whether the override was used.
func (l *Loader) Load(filename string) (content []byte, fromCustom bool, err error) {
	customPath := l.CustomPath(filename)
	if content, err := os.ReadFile(customPath); err == nil { // #nosec G304 - user template directory
		l.logf("   Using custom template: %s", customPath)
		return content, true, nil
	}

	l.logf("   Using embedded template: %s", filename)
	content, err = fs.ReadFile(l.embedded, filename)
	if err != nil {
		return nil, false, fmt.Errorf("Template file not found: %s: %w", customPath, err) //nolint:staticcheck // user-facing message
	}
	return content, false, nil
}

// CustomPath returns the path where a custom template would be located.
func (l *Loader) CustomPath(filename string) string {
	return filepath.Join(l.CustomDir(), filename)
}

// CustomDir returns the directory of this plugin's custom templates.
func (l *Loader) CustomDir() string {
	return filepath.Join(l.customBase, l.pluginName)
}

// HasCustomTemplate checks if a custom template exists for the given filename.
func (l *Loader) HasCustomTemplate(filename string) bool {
	_, err := os.Stat(l.CustomPath(filename))
	return err == nil
}

// HasEmbedded checks if the binary carries a template with this name.
func (l *Loader) HasEmbedded(filename string) bool {
	_, err := fs.Stat(l.embedded, filename)
	return err == nil
}

// ListEmbeddedTemplates returns the embedded template files, sorted.
func (l *Loader) ListEmbeddedTemplates() ([]string, error) {
	var templates []string
	err := fs.WalkDir(l.embedded, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !strings.HasSuffix(path, ".go") {
			templates = append(templates, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded templates: %w", err)
	}
	sort.Strings(templates)
	return templates, nil
}

// DumpTemplate writes an embedded template to the custom templates directory.
// Without force an existing custom template is left alone and
// ErrTemplateExists is returned.
func (l *Loader) DumpTemplate(filename string, force bool) error {
	if err := security.ValidateFilePath(filename, l.CustomDir()); err != nil {
		return err
	}
	content, err := fs.ReadFile(l.embedded, filename)
	if err != nil {
		return fmt.Errorf("failed to read embedded template %q: %w", filename, err)
	}

	outputPath := l.CustomPath(filename)
	if !force && l.HasCustomTemplate(filename) {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrTemplateExists, outputPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", filepath.Dir(outputPath), err)
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil { // #nosec G306 - user templates
		return fmt.Errorf("failed to write template to %q: %w", outputPath, err)
	}
	return nil
}

// DumpAllTemplates writes every embedded template to the custom directory.
// Existing custom templates are skipped unless force is set; the skipped
// ones are reported together in the returned error.
func (l *Loader) DumpAllTemplates(force bool) ([]string, error) {
	templates, err := l.ListEmbeddedTemplates()
	if err != nil {
		return nil, err
	}

	var dumped []string
	var skipped []string
	for _, name := range templates {
		if err := l.DumpTemplate(name, force); err != nil {
			if errors.Is(err, ErrTemplateExists) {
				skipped = append(skipped, err.Error())
				continue
			}
			return dumped, err
		}
		dumped = append(dumped, l.CustomPath(name))
	}

	if len(skipped) > 0 {
		return dumped, fmt.Errorf("%s", strings.Join(skipped, "; "))
	}
	return dumped, nil
}

// Materialise returns an on-disk path for a template: the custom copy when
// one exists, otherwise the embedded copy written to the custom directory.
// Callers that need a real file, such as image tools, use this.
func (l *Loader) Materialise(filename string) (string, error) {
	if l.HasCustomTemplate(filename) {
		return l.CustomPath(filename), nil
	}
	if err := l.DumpTemplate(filename, false); err != nil && !errors.Is(err, ErrTemplateExists) {
		return "", err
	}
	return l.CustomPath(filename), nil
}

// TemplateInfo describes where a template comes from.
type TemplateInfo struct {
	Plugin         string
	Filename       string
	EmbeddedExists bool
	CustomExists   bool
	CustomPath     string
}

// UsingCustom reports whether Load would return the custom copy.
func (i TemplateInfo) UsingCustom() bool {
	return i.CustomExists
}

// GetInfo returns information about a specific template.
func (l *Loader) GetInfo(filename string) TemplateInfo {
	return TemplateInfo{
		Plugin:         l.pluginName,
		Filename:       filename,
		EmbeddedExists: l.HasEmbedded(filename),
		CustomExists:   l.HasCustomTemplate(filename),
		CustomPath:     l.CustomPath(filename),
	}
}
