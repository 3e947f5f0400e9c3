package state

import "testing"

func TestSelectionTokenEncoding(t *testing.T) {
	tests := []struct {
		token int
		want  Selection
		back  int
	}{
		{token: 0, want: Palette(0), back: 0},
		{token: 15, want: Palette(15), back: 15},
		{token: -1, want: None(), back: -1},
		{token: -2, want: Accent(), back: -2},
		{token: -3, want: None(), back: -1},
		{token: -99, want: None(), back: -1},
		{token: -100, want: Seed(0), back: -100},
		{token: -106, want: Seed(6), back: -106},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got := SelectionFromToken(tt.token)
			if got != tt.want {
				t.Errorf("SelectionFromToken(%d) = %v, want %v", tt.token, got, tt.want)
			}
			if back := got.Token(); back != tt.back {
				t.Errorf("Token() = %d, want %d", back, tt.back)
			}
		})
	}
}

func TestResolveNeverPanics(t *testing.T) {
	palette := []string{"#112233", "#445566"}
	seeds := []string{"#aa0000"}

	for token := -300; token <= 300; token++ {
		got := ResolveToken(token, palette, "#abcdef", seeds)
		empty := ResolveToken(token, nil, "", nil)
		if empty != "" {
			t.Fatalf("ResolveToken(%d) over empty sources = %q, want empty", token, empty)
		}
		if token >= len(palette) && got != "" {
			t.Fatalf("ResolveToken(%d) = %q, want empty for out of range index", token, got)
		}
	}

	if got := Resolve(Palette(-5), palette, "", seeds); got != "" {
		t.Errorf("negative palette index resolved to %q", got)
	}
	if got := Resolve(Seed(-1), palette, "", seeds); got != "" {
		t.Errorf("negative seed index resolved to %q", got)
	}
}

func TestResolveAccentPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		palette []string
		seeds   []string
	}{
		{name: "empty sources"},
		{name: "palette only", palette: []string{"#000000"}},
		{name: "everything", palette: []string{"#000000"}, seeds: []string{"#111111"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveToken(TokenAccent, tt.palette, "#abcdef", tt.seeds); got != "#abcdef" {
				t.Errorf("accent resolved to %q, want #abcdef", got)
			}
		})
	}
}

func TestResolveSeedIndexing(t *testing.T) {
	seeds := []string{"#010101", "#020202", "#030303"}
	for i := range 10 {
		want := ""
		if i < len(seeds) {
			want = seeds[i]
		}
		if got := ResolveToken(TokenSeedBase-i, []string{"#ffffff"}, "#abcdef", seeds); got != want {
			t.Errorf("seed %d resolved to %q, want %q", i, got, want)
		}
	}
}
