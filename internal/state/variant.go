package state

// Slider bounds. The slider moves in whole steps that map linearly onto a
// 0-100 variant percentage.
const (
	MaxStep     = 8
	DefaultStep = 4
)

// VariantFunc transforms a base palette at a variant percentage. It must be
// a pure function of its arguments.
type VariantFunc func(base []string, percent float64) []string

// StepPercent converts a slider step to a variant percentage.
func StepPercent(step int) float64 {
	return float64(clampStep(step)) / MaxStep * 100
}

func clampStep(step int) int {
	return max(0, min(MaxStep, step))
}

// propagate recomputes a displayed collection from its base. Empty bases
// produce an empty result without calling fn, as do nil transforms.
func propagate(fn VariantFunc, base []string, step int) []string {
	if len(base) == 0 {
		return []string{}
	}
	if fn == nil {
		return clone(base)
	}
	out := fn(clone(base), StepPercent(step))
	if len(out) != len(base) {
		// Keep displayed the same length as base whatever the transform does.
		fixed := clone(base)
		copy(fixed, out)
		return fixed
	}
	return out
}

func clone(colors []string) []string {
	out := make([]string, len(colors))
	copy(out, colors)
	return out
}
