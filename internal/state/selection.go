// Package state holds the colour selection model: the extracted colour
// sources, which of them is selected, the tonal slider, the panel layout
// and the per-integration colour fields.
//
// Everything here runs on a single event goroutine and talks to the
// extraction backend only through results handed to it.
package state

import "fmt"

// SelectionKind discriminates the colour source a selection points into.
type SelectionKind int

const (
	// SelectNone means no colour is selected.
	SelectNone SelectionKind = iota
	// SelectAccent selects the recommended accent.
	SelectAccent
	// SelectPalette selects a swatch of the displayed palette.
	SelectPalette
	// SelectSeed selects one of the Material You seed colours.
	SelectSeed
)

// Integer token encoding shared with the settings panels and the config file.
const (
	TokenNone     = -1
	TokenAccent   = -2
	TokenSeedBase = -100
)

func (k SelectionKind) String() string {
	switch k {
	case SelectAccent:
		return "accent"
	case SelectPalette:
		return "palette"
	case SelectSeed:
		return "seed"
	default:
		return "none"
	}
}

// Selection identifies the active colour source. Index is only meaningful
// for palette and seed selections.
type Selection struct {
	Kind  SelectionKind
	Index int
}

// None returns the empty selection.
func None() Selection { return Selection{Kind: SelectNone} }

// Accent returns the accent selection.
func Accent() Selection { return Selection{Kind: SelectAccent} }

// Palette returns a selection of palette swatch i.
func Palette(i int) Selection { return Selection{Kind: SelectPalette, Index: i} }

// Seed returns a selection of seed colour i.
func Seed(i int) Selection { return Selection{Kind: SelectSeed, Index: i} }

// SelectionFromToken decodes the integer token form. Values >= 0 are palette
// indices, -2 is the accent, values <= -100 are seeds (seed = -100 - token)
// and everything else is no selection.
func SelectionFromToken(token int) Selection {
	switch {
	case token >= 0:
		return Palette(token)
	case token == TokenAccent:
		return Accent()
	case token <= TokenSeedBase:
		return Seed(TokenSeedBase - token)
	default:
		return None()
	}
}

// Token encodes the selection as an integer token.
func (s Selection) Token() int {
	switch s.Kind {
	case SelectAccent:
		return TokenAccent
	case SelectPalette:
		if s.Index < 0 {
			return TokenNone
		}
		return s.Index
	case SelectSeed:
		if s.Index < 0 {
			return TokenNone
		}
		return TokenSeedBase - s.Index
	default:
		return TokenNone
	}
}

func (s Selection) String() string {
	switch s.Kind {
	case SelectPalette, SelectSeed:
		return fmt.Sprintf("%s[%d]", s.Kind, s.Index)
	default:
		return s.Kind.String()
	}
}

// Resolve returns the colour a selection points at, or "" when the selection
// is empty or its collection has no such entry. It never panics.
func Resolve(sel Selection, palette []string, accent string, seeds []string) string {
	switch sel.Kind {
	case SelectAccent:
		return accent
	case SelectSeed:
		return at(seeds, sel.Index)
	case SelectPalette:
		return at(palette, sel.Index)
	}
	return ""
}

// ResolveToken is Resolve over the integer token form.
func ResolveToken(token int, palette []string, accent string, seeds []string) string {
	return Resolve(SelectionFromToken(token), palette, accent, seeds)
}

func at(colors []string, i int) string {
	if i < 0 || i >= len(colors) {
		return ""
	}
	return colors[i]
}
