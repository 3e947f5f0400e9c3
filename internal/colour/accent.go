package colour

import (
	"errors"
	"image"

	"github.com/lucasb-eyer/go-colorful"

	imgutil "github.com/jmylchreest/kuntatinte/internal/image"
)

// ErrNoAccent is returned when no cluster is vibrant enough to be an accent.
var ErrNoAccent = errors.New("Could not extract a vibrant accent color") //nolint:staticcheck // user-facing message

const (
	accentSampleSize = 64
	accentClusters   = 8
)

// ExtractAccent picks the most vibrant colour of the image. The image is
// reduced to 64x64 and eight clusters; greys, near-black and near-white
// clusters are skipped and the rest are scored by saturation times value.
func ExtractAccent(img image.Image) (string, error) {
	small := imgutil.Resize(img, accentSampleSize, accentSampleSize)
	clusters, err := NewQuantizer().Quantize(small, accentClusters)
	if err != nil {
		return "", err
	}
	return AccentFromColours(Hexes(clusters))
}

// AccentFromColours scores candidate colours and returns the most vibrant one.
func AccentFromColours(colors []string) (string, error) {
	best := ""
	bestScore := 0.0
	for _, hex := range colors {
		n, ok := Normalize(hex)
		if !ok {
			continue
		}
		c, err := colorful.Hex(n)
		if err != nil {
			continue
		}
		_, s, v := c.Hsv()
		if s <= 0.15 || v <= 0.15 || v >= 0.95 {
			continue
		}
		if score := s * v; score > bestScore {
			best, bestScore = n, score
		}
	}
	if best == "" {
		return "", ErrNoAccent
	}
	return best, nil
}
