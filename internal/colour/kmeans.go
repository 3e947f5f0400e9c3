package colour

import (
	"fmt"
	"image"
	"math"
	"math/rand"
	"sort"
)

// Cluster is a quantised colour and the number of sampled pixels it covers.
type Cluster struct {
	Colour RGB
	Count  int
}

// Quantizer reduces an image to a small set of representative colours using
// k-means clustering with k-means++ initialisation.
type Quantizer struct {
	maxIterations int
	convergence   float64
	maxSamples    int
	seed          int64
}

// QuantizerOption configures a Quantizer.
type QuantizerOption func(*Quantizer)

// WithSeed sets the random seed used for centroid initialisation.
func WithSeed(seed int64) QuantizerOption {
	return func(q *Quantizer) { q.seed = seed }
}

// WithMaxSamples caps the number of pixels sampled from the image.
func WithMaxSamples(n int) QuantizerOption {
	return func(q *Quantizer) {
		if n > 0 {
			q.maxSamples = n
		}
	}
}

// NewQuantizer creates a Quantizer. The default seed is fixed so the same image
// always quantises to the same colours.
func NewQuantizer(opts ...QuantizerOption) *Quantizer {
	q := &Quantizer{
		maxIterations: 20,
		convergence:   1.0,
		maxSamples:    4000,
		seed:          1,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Quantize returns up to k clusters ordered by population, most common first.
func (q *Quantizer) Quantize(img image.Image, k int) ([]Cluster, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if k < 1 || k > 256 {
		return nil, fmt.Errorf("color count must be between 1 and 256, got %d", k)
	}

	pixels := q.samplePixels(img)
	if len(pixels) == 0 {
		return nil, fmt.Errorf("no pixels found in image")
	}

	unique := make(map[RGB]int)
	for _, p := range pixels {
		unique[p]++
	}
	if len(unique) <= k {
		clusters := make([]Cluster, 0, len(unique))
		for c, n := range unique {
			clusters = append(clusters, Cluster{Colour: c, Count: n})
		}
		sortClusters(clusters)
		return clusters, nil
	}

	rng := rand.New(rand.NewSource(q.seed)) // #nosec G404 - deterministic clustering, not security sensitive
	points := make([]point3D, len(pixels))
	for i, p := range pixels {
		points[i] = point3D{R: float64(p.R), G: float64(p.G), B: float64(p.B)}
	}

	centroids, counts := q.kmeans(rng, points, k)
	clusters := make([]Cluster, 0, k)
	for i, c := range centroids {
		if counts[i] == 0 {
			continue
		}
		clusters = append(clusters, Cluster{
			Colour: RGB{R: toByte(c.R), G: toByte(c.G), B: toByte(c.B)},
			Count:  counts[i],
		})
	}
	clusters = mergeDuplicates(clusters)
	sortClusters(clusters)
	return clusters, nil
}

// Hexes returns the cluster colours as hex strings, preserving order.
func Hexes(clusters []Cluster) []string {
	out := make([]string, len(clusters))
	for i, c := range clusters {
		out[i] = c.Colour.Hex()
	}
	return out
}

// point3D represents a point in 3D RGB color space.
type point3D struct {
	R, G, B float64
}

func (p point3D) distanceSq(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return dr*dr + dg*dg + db*db
}

// samplePixels grid-samples the image so large wallpapers stay cheap.
// Fully transparent pixels are skipped.
func (q *Quantizer) samplePixels(img image.Image) []RGB {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	step := 1
	if total > q.maxSamples {
		step = max(int(math.Sqrt(float64(total)/float64(q.maxSamples))), 1)
	}

	pixels := make([]RGB, 0, min(total, q.maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			c := img.At(x, y)
			if _, _, _, a := c.RGBA(); a == 0 {
				continue
			}
			pixels = append(pixels, ToRGB(c))
		}
	}
	return pixels
}

func (q *Quantizer) kmeans(rng *rand.Rand, points []point3D, k int) ([]point3D, []int) {
	centroids := initCentroids(rng, points, k)
	assignments := make([]int, len(points))

	for iter := 0; iter < q.maxIterations; iter++ {
		changed := 0
		for i, p := range points {
			if nearest := nearestCentroid(p, centroids); assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}
		if iter > 0 && float64(changed)/float64(len(points)) < 0.005 {
			break
		}

		next := recalculate(points, assignments, centroids)
		movement := 0.0
		for i := range centroids {
			movement += math.Sqrt(centroids[i].distanceSq(next[i]))
		}
		centroids = next
		if movement/float64(k) < q.convergence {
			break
		}
	}

	counts := make([]int, k)
	for i, p := range points {
		assignments[i] = nearestCentroid(p, centroids)
		counts[assignments[i]]++
	}
	return centroids, counts
}

// initCentroids picks starting centroids with k-means++.
func initCentroids(rng *rand.Rand, points []point3D, k int) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			best := math.MaxFloat64
			for _, c := range centroids {
				best = math.Min(best, p.distanceSq(c))
			}
			distances[i] = best
			total += best
		}

		if total == 0 {
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}
	return centroids
}

func nearestCentroid(p point3D, centroids []point3D) int {
	nearest := 0
	best := math.MaxFloat64
	for i, c := range centroids {
		if d := p.distanceSq(c); d < best {
			best = d
			nearest = i
		}
	}
	return nearest
}

// recalculate moves each centroid to the mean of its points. Empty clusters
// keep their previous position.
func recalculate(points []point3D, assignments []int, previous []point3D) []point3D {
	sums := make([]point3D, len(previous))
	counts := make([]int, len(previous))
	for i, p := range points {
		c := assignments[i]
		sums[c].R += p.R
		sums[c].G += p.G
		sums[c].B += p.B
		counts[c]++
	}

	out := make([]point3D, len(previous))
	for i := range previous {
		if counts[i] == 0 {
			out[i] = previous[i]
			continue
		}
		n := float64(counts[i])
		out[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
	}
	return out
}

func mergeDuplicates(clusters []Cluster) []Cluster {
	index := make(map[RGB]int, len(clusters))
	out := clusters[:0]
	for _, c := range clusters {
		if i, ok := index[c.Colour]; ok {
			out[i].Count += c.Count
			continue
		}
		index[c.Colour] = len(out)
		out = append(out, c)
	}
	return out
}

// sortClusters orders by count descending with hex as a stable tie-breaker.
func sortClusters(clusters []Cluster) {
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		return clusters[i].Colour.Hex() < clusters[j].Colour.Hex()
	})
}

func toByte(v float64) uint8 {
	return uint8(clamp(math.Round(v), 0, 255))
}
