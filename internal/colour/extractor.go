package colour

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/hashicorp/go-hclog"

	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
)

// Extractor produces a 16-colour palette for an image.
type Extractor interface {
	// Extract returns the palette for the image at path in the given mode.
	Extract(ctx context.Context, path string, mode Mode) ([]string, error)
}

// Method names a palette source as shown to the user.
type Method string

const (
	// MethodImageMagick clusters the image natively into an ANSI palette.
	MethodImageMagick Method = "ImageMagick"

	// MethodPywal runs pywal and reads its cache.
	MethodPywal Method = "Pywal"

	// MethodKDEMaterialYou reads the cache kept by kde-material-you-colors.
	MethodKDEMaterialYou Method = "KDE Material You"

	// MethodMaterialYou generates tonal palettes from extracted seed colours.
	MethodMaterialYou Method = "Material You"

	// MethodCustom means the palette is edited by hand, swatch by swatch.
	MethodCustom Method = "Custom"
)

// ValidMethods returns every method in display order.
func ValidMethods() []Method {
	return []Method{MethodImageMagick, MethodPywal, MethodKDEMaterialYou, MethodMaterialYou, MethodCustom}
}

// ParseMethod resolves a method by display name or a dashed lowercase alias
// such as "kde-material-you".
func ParseMethod(name string) (Method, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", " "))
	for _, m := range ValidMethods() {
		if strings.ToLower(string(m)) == norm {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown method: %s (valid methods: %v)", name, ValidMethods())
}

// Mode selects a dark or light palette.
type Mode string

const (
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
	ModeAuto  Mode = "auto"
)

// ParseMode validates a mode name. An empty name means dark.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(name)) {
	case ModeDark, "":
		return ModeDark, nil
	case ModeLight:
		return ModeLight, nil
	case ModeAuto:
		return ModeAuto, nil
	}
	return "", fmt.Errorf("invalid mode: %s (valid modes: dark, light, auto)", name)
}

// ExtractorConfig holds configuration for palette extraction.
type ExtractorConfig struct {
	Method        Method
	CacheDir      string
	WalCache      string
	SliderPercent float64
	Loader        imgutil.Loader
	Logger        hclog.Logger

	// Runner starts pywal. Only the Pywal method needs it.
	Runner CommandRunner
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if c.SliderPercent < 0 || c.SliderPercent > 100 {
		return fmt.Errorf("slider percent must be between 0 and 100, got %g", c.SliderPercent)
	}
	return nil
}

func (c ExtractorConfig) withDefaults() ExtractorConfig {
	if c.Loader == nil {
		c.Loader = imgutil.NewFileLoader()
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
	if c.WalCache == "" {
		c.WalCache = DefaultWalCache()
	}
	return c
}

// NewExtractor creates the Extractor for cfg.Method.
func NewExtractor(cfg ExtractorConfig) (Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	switch cfg.Method {
	case MethodImageMagick:
		return &ANSIExtractor{
			loader: cfg.Loader,
			cache:  NewPaletteCache(cfg.CacheDir),
			logger: cfg.Logger.Named("imagemagick"),
		}, nil
	case MethodPywal:
		if cfg.Runner == nil {
			return nil, fmt.Errorf("the %s method needs a command runner", MethodPywal)
		}
		return &WalExtractor{cachePath: cfg.WalCache, runner: cfg.Runner}, nil
	case MethodKDEMaterialYou:
		return &WalExtractor{cachePath: cfg.WalCache}, nil
	case MethodMaterialYou:
		return &MaterialExtractor{loader: cfg.Loader, slider: cfg.SliderPercent}, nil
	case MethodCustom:
		return nil, fmt.Errorf("custom palettes are edited by hand and cannot be extracted")
	}
	return nil, fmt.Errorf("unknown method: %s", cfg.Method)
}

// ANSIExtractor builds terminal palettes from clustered image colours and
// caches the result per image, mtime and mode.
type ANSIExtractor struct {
	loader imgutil.Loader
	cache  *PaletteCache
	logger hclog.Logger
}

// Extract implements Extractor.
func (e *ANSIExtractor) Extract(ctx context.Context, path string, mode Mode) ([]string, error) {
	var dominant []string
	light := mode == ModeLight
	if mode == ModeAuto {
		d, err := e.dominant(path)
		if err != nil {
			return nil, err
		}
		dominant = d
		light = AverageLightness(dominant) > 50
		e.logger.Debug("auto mode resolved", "light", light)
	}

	key, keyErr := e.cache.Key(path, light)
	if keyErr != nil {
		e.logger.Error("error generating cache key", "error", keyErr)
	} else if cached, ok := e.cache.Load(key); ok {
		e.logger.Info("using cached color extraction result", "path", path)
		return cached, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if dominant == nil {
		d, err := e.dominant(path)
		if err != nil {
			return nil, err
		}
		dominant = d
	}

	palette, kind, err := BuildANSIPalette(dominant, light, e.logger)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("palette built", "kind", kind.String(), "light", light)

	if keyErr == nil {
		if err := e.cache.Save(key, palette); err != nil {
			e.logger.Error("error saving to cache", "error", err)
		}
	}
	return palette, nil
}

func (e *ANSIExtractor) dominant(path string) ([]string, error) {
	img, err := e.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return DominantColours(img)
}

// DominantColours returns the most common colours of an image, most common
// first, as uppercase hex.
func DominantColours(img image.Image) ([]string, error) {
	small := imgutil.FitWithin(img, 400, 300)
	clusters, err := NewQuantizer().Quantize(small, DominantColourCount)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(clusters))
	for i, c := range clusters {
		out[i] = c.Colour.UpperHex()
	}
	return out, nil
}

// WalExtractor reads palettes from the pywal cache. With a runner it runs
// pywal first; without one the cache is expected to be kept by
// kde-material-you-colors.
type WalExtractor struct {
	cachePath string
	runner    CommandRunner
}

// Extract implements Extractor. The mode is decided by whatever produced the cache.
func (e *WalExtractor) Extract(ctx context.Context, path string, _ Mode) ([]string, error) {
	if e.runner != nil {
		if err := RunWal(ctx, e.runner, path); err != nil {
			return nil, err
		}
	}
	colors, err := ReadWalCache(e.cachePath)
	switch {
	case errors.Is(err, ErrWalCacheMissing) && e.runner == nil:
		return nil, fmt.Errorf("%w (is kde-material-you-colors running?)", err)
	case err != nil:
		return nil, err
	}
	if len(colors) == 0 {
		return nil, fmt.Errorf("pywal returned no colors")
	}
	return colors, nil
}

// MaterialExtractor generates a palette from the best seed colour of the image.
type MaterialExtractor struct {
	loader imgutil.Loader
	slider float64
}

// Extract implements Extractor. Auto mode picks light when the seed itself is light.
func (e *MaterialExtractor) Extract(_ context.Context, path string, mode Mode) ([]string, error) {
	seeds, err := SeedsFromFile(e.loader, path, 1)
	if err != nil {
		return nil, err
	}
	light := mode == ModeLight || (mode == ModeAuto && seeds[0].Tone > 50)
	return MaterialPalette(seeds[0].Hex, light, e.slider)
}

// AccentFromFile loads an image and extracts its accent colour.
func AccentFromFile(loader imgutil.Loader, path string) (string, error) {
	img, err := loader.Load(path)
	if err != nil {
		return "", err
	}
	return ExtractAccent(img)
}

// SeedsFromFile loads an image and extracts up to count seed colours.
func SeedsFromFile(loader imgutil.Loader, path string, count int) ([]SeedInfo, error) {
	img, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return ExtractSeeds(img, count)
}
