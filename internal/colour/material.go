package colour

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"cogentcore.org/core/colors/cam/hct"
	"cogentcore.org/core/colors/matcolor"

	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
)

// MaxSeeds is the largest number of source colours offered for one image.
const MaxSeeds = 7

// FallbackSeed is used when an image has no colourful cluster at all.
const FallbackSeed = "#4285f4"

const (
	seedSampleWidth  = 64
	seedClusters     = 64
	seedMinChroma    = 5.0
	seedMinShare     = 0.01
	seedTargetChroma = 48.0
)

type seedCandidate struct {
	colour hctColour
	score  float64
}

// hctColour pairs a colour with its HCT coordinates.
type hctColour struct {
	RGB    RGB
	Hue    float64
	Chroma float64
	Tone   float64
}

// SeedInfo describes an extracted source colour.
type SeedInfo struct {
	Hex    string  `json:"hex"`
	Hue    float64 `json:"hue"`
	Chroma float64 `json:"chroma"`
	Tone   float64 `json:"tone"`
}

// ExtractSeeds returns up to count Material You source colours, best first.
// The image is shrunk to 64 pixels wide and clustered; clusters are ranked by
// how much of the image they cover and how colourful they are, then picked so
// their hues stay apart.
func ExtractSeeds(img image.Image, count int) ([]SeedInfo, error) {
	if count < 1 {
		return nil, fmt.Errorf("seed count must be at least 1, got %d", count)
	}
	small := imgutil.ResizeToWidth(img, seedSampleWidth)
	clusters, err := NewQuantizer(WithMaxSamples(seedSampleWidth * seedSampleWidth * 4)).Quantize(small, seedClusters)
	if err != nil {
		return nil, err
	}
	return ScoreSeeds(clusters, count), nil
}

// ScoreSeeds ranks quantised clusters as Material You seeds.
func ScoreSeeds(clusters []Cluster, count int) []SeedInfo {
	total := 0
	for _, c := range clusters {
		total += c.Count
	}

	var candidates []seedCandidate
	for _, c := range clusters {
		h := hct.FromColor(color.RGBA{R: c.Colour.R, G: c.Colour.G, B: c.Colour.B, A: 255})
		share := float64(c.Count) / float64(max(total, 1))
		if float64(h.Chroma) < seedMinChroma || share <= seedMinShare {
			continue
		}
		chroma := float64(h.Chroma)
		weight := 0.1
		if chroma >= seedTargetChroma {
			weight = 0.3
		}
		candidates = append(candidates, seedCandidate{
			colour: hctColour{RGB: c.Colour, Hue: float64(h.Hue), Chroma: chroma, Tone: float64(h.Tone)},
			score:  share*100*0.7 + (chroma-seedTargetChroma)*weight,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var chosen []hctColour
	for diff := 90.0; diff >= 15; diff-- {
		chosen = chosen[:0]
		for _, cand := range candidates {
			if hueIsDistinct(cand.colour.Hue, chosen, diff) {
				chosen = append(chosen, cand.colour)
			}
			if len(chosen) >= count {
				break
			}
		}
		if len(chosen) >= count {
			break
		}
	}

	if len(chosen) == 0 {
		fallback, _ := ParseHex(FallbackSeed)
		h := hct.FromColor(color.RGBA{R: fallback.R, G: fallback.G, B: fallback.B, A: 255})
		chosen = append(chosen, hctColour{RGB: fallback, Hue: float64(h.Hue), Chroma: float64(h.Chroma), Tone: float64(h.Tone)})
	}

	out := make([]SeedInfo, len(chosen))
	for i, c := range chosen {
		c = fixDisliked(c)
		out[i] = SeedInfo{Hex: c.RGB.Hex(), Hue: round2(c.Hue), Chroma: round2(c.Chroma), Tone: round2(c.Tone)}
	}
	return out
}

// SeedHexes returns just the hex values of seeds.
func SeedHexes(seeds []SeedInfo) []string {
	out := make([]string, len(seeds))
	for i, s := range seeds {
		out[i] = s.Hex
	}
	return out
}

func hueIsDistinct(hue float64, chosen []hctColour, diff float64) bool {
	for _, c := range chosen {
		if HueDistance(hue, c.Hue) < diff {
			return false
		}
	}
	return true
}

// fixDisliked lifts dark yellow-greens, which read as bile, to a lighter tone.
func fixDisliked(c hctColour) hctColour {
	hue := math.Round(c.Hue)
	if hue >= 90 && hue <= 111 && math.Round(c.Chroma) > 16 && math.Round(c.Tone) < 65 {
		h := hct.New(float32(c.Hue), float32(c.Chroma), 70)
		return hctColour{RGB: ToRGB(h.AsRGBA()), Hue: float64(h.Hue), Chroma: float64(h.Chroma), Tone: float64(h.Tone)}
	}
	return c
}

// tonalPalette exposes absolute HCT tones for one hue and chroma.
type tonalPalette struct {
	tones matcolor.Tones
}

func newTonalPalette(hue, chroma float64) *tonalPalette {
	key := hct.New(float32(hue), float32(chroma), 50).AsRGBA()
	return &tonalPalette{tones: matcolor.NewTones(key)}
}

func (p *tonalPalette) tone(t float64) string {
	return ToRGB(p.tones.AbsTone(int(math.Round(clamp(t, 0, 100))))).Hex()
}

// MaterialPalette builds a 16-colour terminal palette from one seed colour.
// Primary, secondary (dimmer tones of the primary) and neutral tonal palettes
// are mapped onto the ANSI slots for the requested mode, then the slider
// percent is applied through the variant sequence.
func MaterialPalette(seed string, light bool, sliderPercent float64) ([]string, error) {
	rgb, err := ParseHex(seed)
	if err != nil {
		return nil, err
	}
	h := hct.FromColor(color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255})
	hue, chroma := float64(h.Hue), float64(h.Chroma)

	primary := newTonalPalette(hue, math.Max(chroma, 36))
	neutral := newTonalPalette(hue, math.Min(chroma/12, 6))

	p := func(t float64) string { return primary.tone(t) }
	factor := 0.9
	if light {
		factor = 1.1
	}
	s := func(t float64) string { return primary.tone(t * factor) }
	n := func(t float64) string { return neutral.tone(t) }

	var palette []string
	if light {
		palette = []string{
			n(99), p(40), s(40), p(40), p(50), s(50), p(60), n(20),
			n(80), p(50), s(50), p(60), p(70), s(70), p(80), n(10),
		}
	} else {
		palette = []string{
			n(10), p(70), s(70), p(60), p(50), s(50), p(40), n(80),
			n(20), p(60), s(60), p(50), p(40), s(40), p(30), n(90),
		}
	}
	return PaletteAtSlider(palette, sliderPercent), nil
}
