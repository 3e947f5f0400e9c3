package colour

import "testing"

func TestApplyVariant(t *testing.T) {
	tests := []struct {
		variant Variant
		want    string
	}{
		{VariantContent, "#57A6CF"},
		{VariantExpressive, "#27B5FF"},
		{VariantFidelity, "#46ABE0"},
		{VariantMonochrome, "#939393"},
		{VariantNeutral, "#8697A0"},
		{VariantTonalSpot, "#3daee9"},
		{VariantVibrant, "#27B5FF"},
		{VariantRainbow, "#E9783D"},
		{VariantFruitSalad, "#732CFA"},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			if got := ApplyVariant("#3daee9", tt.variant, 2, 4); got != tt.want {
				t.Errorf("ApplyVariant(#3daee9, %s, 2, 4) = %s, want %s", tt.variant, got, tt.want)
			}
		})
	}
}

func TestApplyVariantInvalidColour(t *testing.T) {
	for _, v := range Variants() {
		if got := ApplyVariant("not-a-colour", v, 0, 1); got != "not-a-colour" {
			t.Errorf("ApplyVariant(invalid, %s) = %q, want input unchanged", v, got)
		}
	}
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("tonalspot")
	if err != nil || v != VariantTonalSpot {
		t.Errorf("ParseVariant(tonalspot) = %v, %v", v, err)
	}
	if _, err := ParseVariant("bogus"); err == nil {
		t.Error("ParseVariant(bogus) should fail")
	}
	if got := Variant(42).String(); got != "Variant(42)" {
		t.Errorf("Variant(42).String() = %q", got)
	}
}

func TestPaletteAtSlider(t *testing.T) {
	base := []string{"#3daee9", "#e93d5a"}
	tests := []struct {
		name    string
		percent float64
		want    []string
	}{
		{name: "start", percent: 0, want: []string{"#57a6cf", "#cf576b"}},
		{name: "end", percent: 100, want: []string{"#2cb3fa", "#fa702c"}},
		{name: "mid segment", percent: 56.25, want: []string{"#32b1f4", "#f43252"}},
		{name: "clamped above", percent: 150, want: []string{"#2cb3fa", "#fa702c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaletteAtSlider(base, tt.percent)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d colours, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("colour %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPaletteAtSliderGrey(t *testing.T) {
	got := PaletteAtSlider([]string{"#808080"}, 50)
	if len(got) != 1 || got[0] != "#808080" {
		t.Errorf("PaletteAtSlider(grey, 50) = %v, want [#808080]", got)
	}
	if got := PaletteAtSlider(nil, 50); len(got) != 0 {
		t.Errorf("PaletteAtSlider(nil) = %v, want empty", got)
	}
}

func TestVariantNameAtSlider(t *testing.T) {
	tests := []struct {
		percent float64
		want    string
	}{
		{0, "Content"},
		{6.25, "Content"},
		{6.26, "Fidelity"},
		{18.75, "Neutral"},
		{50, "TonalSpot"},
		{100, "FruitSalad"},
		{-20, "Content"},
		{500, "FruitSalad"},
	}

	for _, tt := range tests {
		if got := VariantNameAtSlider(tt.percent); got != tt.want {
			t.Errorf("VariantNameAtSlider(%v) = %s, want %s", tt.percent, got, tt.want)
		}
	}
}
