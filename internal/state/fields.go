package state

import "sort"

// Provenance records where an integration colour came from. It is shown
// next to the field and has no effect on how colours are resolved.
type Provenance string

const (
	ProvenanceNone    Provenance = ""
	ProvenanceConfig  Provenance = "config"
	ProvenancePalette Provenance = "palette"
	ProvenancePick    Provenance = "pick"
	ProvenanceLoaded  Provenance = "loaded"
)

// Integration names used as field groups.
const (
	IntegrationStarship    = "starship"
	IntegrationFastfetch   = "fastfetch"
	IntegrationUlauncher   = "ulauncher"
	IntegrationOpenRGB     = "openrgb"
	IntegrationColorScheme = "color_scheme"
)

// Integrations returns the integration names in display order.
func Integrations() []string {
	return []string{
		IntegrationStarship,
		IntegrationFastfetch,
		IntegrationUlauncher,
		IntegrationOpenRGB,
		IntegrationColorScheme,
	}
}

// ColorField is an integration colour and where it came from.
type ColorField struct {
	Value      string
	Provenance Provenance
}

// Fields holds the colour fields of every integration, keyed by integration
// and then by field name. Fields survive wallpaper changes.
type Fields struct {
	groups   map[string]map[string]ColorField
	registry *Registry
}

// NewFields creates an empty field set that resolves selections through r.
func NewFields(r *Registry) *Fields {
	return &Fields{groups: make(map[string]map[string]ColorField), registry: r}
}

func (f *Fields) set(integration, key string, field ColorField) {
	g, ok := f.groups[integration]
	if !ok {
		g = make(map[string]ColorField)
		f.groups[integration] = g
	}
	g[key] = field
}

// Get returns a field. Unknown fields are empty.
func (f *Fields) Get(integration, key string) ColorField {
	return f.groups[integration][key]
}

// Value returns just the colour of a field.
func (f *Fields) Value(integration, key string) string {
	return f.Get(integration, key).Value
}

// FromConfig sets a field from persisted configuration.
func (f *Fields) FromConfig(integration, key, value string) {
	f.set(integration, key, ColorField{Value: value, Provenance: ProvenanceConfig})
}

// FromSelection copies the currently selected colour into a field. It
// reports false, leaving the field alone, when nothing is selected.
func (f *Fields) FromSelection(integration, key string) bool {
	if f.registry == nil {
		return false
	}
	color := f.registry.SelectedColor()
	if color == "" {
		return false
	}
	f.set(integration, key, ColorField{Value: color, Provenance: ProvenancePalette})
	return true
}

// Pick sets a field from the manual colour picker.
func (f *Fields) Pick(integration, key, value string) {
	f.set(integration, key, ColorField{Value: value, Provenance: ProvenancePick})
}

// LoadFrom replaces fields with values read back from the target tool's
// live configuration.
func (f *Fields) LoadFrom(integration string, values map[string]string) {
	for k, v := range values {
		f.set(integration, k, ColorField{Value: v, Provenance: ProvenanceLoaded})
	}
}

// Clear empties a field.
func (f *Fields) Clear(integration, key string) {
	if g, ok := f.groups[integration]; ok {
		delete(g, key)
	}
}

// Values returns the colours of one integration, omitting empty fields.
func (f *Fields) Values(integration string) map[string]string {
	out := make(map[string]string)
	for k, v := range f.groups[integration] {
		if v.Value != "" {
			out[k] = v.Value
		}
	}
	return out
}

// Keys returns the field names of one integration in sorted order.
func (f *Fields) Keys(integration string) []string {
	keys := make([]string, 0, len(f.groups[integration]))
	for k := range f.groups[integration] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
