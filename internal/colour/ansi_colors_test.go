package colour

import (
	"testing"

	"github.com/hashicorp/go-hclog"
)

var chromaticSample = []string{
	"#1A1B26", "#F7768E", "#9ECE6A", "#E0AF68", "#7AA2F7", "#BB9AF7", "#7DCFFF", "#C0CAF5",
	"#414868", "#FF7A93", "#B9F27C", "#FF9E64", "#7DA6FF", "#C49FFF", "#0DB9D7", "#A9B1D6",
}

func greys(n int) []string {
	out := make([]string, n)
	for i := range out {
		v := i * 255 / (n - 1)
		out[i] = RGB{R: uint8(v), G: uint8(v), B: uint8(v)}.UpperHex()
	}
	return out
}

func TestClassifyColours(t *testing.T) {
	tests := []struct {
		name   string
		colors []string
		want   ImageKind
	}{
		{name: "greys", colors: greys(16), want: KindMonochrome},
		{name: "diverse", colors: chromaticSample, want: KindChromatic},
		{
			name:   "all blue",
			colors: []string{"#2050C0", "#2255C5", "#2458C8", "#2050B8", "#1F4FBF", "#2152C2", "#2356C6", "#2051C1"},
			want:   KindLowDiversity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyColours(tt.colors); got != tt.want {
				t.Errorf("ClassifyColours() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildANSIPalette(t *testing.T) {
	tests := []struct {
		name     string
		dominant []string
		light    bool
		kind     ImageKind
	}{
		{name: "chromatic dark", dominant: chromaticSample, kind: KindChromatic},
		{name: "chromatic light", dominant: chromaticSample, light: true, kind: KindChromatic},
		{name: "monochrome dark", dominant: greys(16), kind: KindMonochrome},
		{name: "monochrome light", dominant: greys(16), light: true, kind: KindMonochrome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			palette, kind, err := BuildANSIPalette(tt.dominant, tt.light, hclog.NewNullLogger())
			if err != nil {
				t.Fatalf("BuildANSIPalette() error: %v", err)
			}
			if kind != tt.kind {
				t.Errorf("kind = %s, want %s", kind, tt.kind)
			}
			if len(palette) != ANSIPaletteSize {
				t.Fatalf("got %d colours, want %d", len(palette), ANSIPaletteSize)
			}
			for i, c := range palette {
				if _, ok := Normalize(c); !ok {
					t.Errorf("colour %d = %q is not a valid hex colour", i, c)
				}
			}

			bg := hslOf(palette[0]).L
			if bg < minBackgroundDark-0.5 || bg > maxBackgroundLight+0.5 {
				t.Errorf("background lightness %v outside normalised range", bg)
			}
		})
	}
}

func TestBuildANSIPaletteIsDeterministic(t *testing.T) {
	a, _, err := BuildANSIPalette(chromaticSample, false, nil)
	if err != nil {
		t.Fatalf("BuildANSIPalette() error: %v", err)
	}
	b, _, _ := BuildANSIPalette(chromaticSample, false, nil)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("colour %d differs between runs: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestBuildANSIPaletteNotEnoughColours(t *testing.T) {
	_, _, err := BuildANSIPalette([]string{"#000000", "#ffffff"}, false, nil)
	if err != ErrNotEnoughColours {
		t.Errorf("error = %v, want ErrNotEnoughColours", err)
	}
}

func TestAverageLightness(t *testing.T) {
	if got := AverageLightness([]string{"#000000", "#ffffff"}); got != 50 {
		t.Errorf("AverageLightness(black, white) = %v, want 50", got)
	}
	if got := AverageLightness(nil); got != 0 {
		t.Errorf("AverageLightness(nil) = %v, want 0", got)
	}
}
