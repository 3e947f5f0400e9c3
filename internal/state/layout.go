package state

import "github.com/hashicorp/go-hclog"

// Panel minimum widths in columns (or pixels, for hosts that use them).
const (
	CentralMinWidth    = 400
	WallpapersMinWidth = 250
	SeparatorWidth     = 1
)

// DefaultSettingsWidth is used for settings panels without a configured width.
const DefaultSettingsWidth = 280

// Origin tags where a width change came from.
type Origin int

const (
	// UserInitiated changes come from the user resizing the window.
	UserInitiated Origin = iota
	// ProgrammaticResize changes were requested by the layout controller.
	ProgrammaticResize
)

func (o Origin) String() string {
	if o == ProgrammaticResize {
		return "programmatic"
	}
	return "user"
}

// Side names a collapsible panel.
type Side int

const (
	// LeftPanel is the wallpaper browser.
	LeftPanel Side = iota
	// RightPanel is the active settings panel.
	RightPanel
)

func (s Side) String() string {
	if s == RightPanel {
		return "right"
	}
	return "left"
}

// Window is the host window the layout resizes.
type Window interface {
	Width() int
	Resize(width int)
}

// Layout tracks which side panels are visible and collapses them when the
// window gets too narrow. The right panel is always hidden before the left
// and the central panel is never hidden. Panels are not re-expanded
// automatically when the window grows again.
type Layout struct {
	window       Window
	leftVisible  bool
	rightVisible bool

	settings      string
	settingsWidth map[string]int

	// depth counts programmatic resizes in flight. Width changes are only
	// acted on when it is zero.
	depth int

	logger hclog.Logger
}

// NewLayout creates a layout with both panels visible. settingsWidths maps
// settings panel names to their minimum widths.
func NewLayout(window Window, settingsWidths map[string]int, logger hclog.Logger) *Layout {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	widths := make(map[string]int, len(settingsWidths))
	for k, v := range settingsWidths {
		widths[k] = v
	}
	return &Layout{
		window:        window,
		leftVisible:   true,
		rightVisible:  true,
		settingsWidth: widths,
		logger:        logger,
	}
}

// LeftVisible reports whether the wallpaper panel is shown.
func (l *Layout) LeftVisible() bool { return l.leftVisible }

// RightVisible reports whether the settings panel is shown.
func (l *Layout) RightVisible() bool { return l.rightVisible }

// SettingsPanel returns the name of the active settings panel.
func (l *Layout) SettingsPanel() string { return l.settings }

// Resizing reports whether a programmatic resize is in progress.
func (l *Layout) Resizing() bool { return l.depth > 0 }

// SettingsWidth returns the minimum width of a settings panel.
func (l *Layout) SettingsWidth(name string) int {
	if w, ok := l.settingsWidth[name]; ok && w > 0 {
		return w
	}
	return DefaultSettingsWidth
}

// SpaceNeeded returns the minimum width for the currently visible panels.
func (l *Layout) SpaceNeeded() int {
	need := CentralMinWidth
	if l.leftVisible {
		need += WallpapersMinWidth
	}
	if l.rightVisible {
		need += l.SettingsWidth(l.settings)
	}
	return need
}

// WidthChanged reacts to a new window width. Programmatic changes, and any
// change arriving while a programmatic resize is running, are ignored.
func (l *Layout) WidthChanged(available int, origin Origin) {
	if origin == ProgrammaticResize || l.depth > 0 {
		return
	}
	if available >= l.SpaceNeeded() {
		return
	}

	l.depth++
	defer func() { l.depth-- }()

	if l.rightVisible {
		l.rightVisible = false
		l.logger.Debug("collapsed panel under width pressure", "panel", RightPanel, "available", available)
	}
	if available < l.SpaceNeeded() && l.leftVisible {
		l.leftVisible = false
		l.logger.Debug("collapsed panel under width pressure", "panel", LeftPanel, "available", available)
	}
}

// Toggle shows or hides a panel on user request, growing or shrinking the
// window by the panel width plus its separator.
func (l *Layout) Toggle(side Side) {
	var width int
	var visible *bool
	switch side {
	case LeftPanel:
		width, visible = WallpapersMinWidth, &l.leftVisible
	case RightPanel:
		width, visible = l.SettingsWidth(l.settings), &l.rightVisible
	default:
		return
	}

	delta := width + SeparatorWidth
	if *visible {
		delta = -delta
	}
	*visible = !*visible
	l.resizeBy(delta)
}

// SetSettingsPanel switches the active settings panel. When the right panel
// is visible the window is resized by the difference in panel widths.
func (l *Layout) SetSettingsPanel(name string) {
	if name == l.settings {
		return
	}
	prev := l.SettingsWidth(l.settings)
	l.settings = name
	if !l.rightVisible {
		return
	}
	if delta := l.SettingsWidth(name) - prev; delta != 0 {
		l.resizeBy(delta)
	}
}

// resizeBy resizes the host window. Width events the host emits while
// Resize runs see a non-zero depth and are not acted on.
func (l *Layout) resizeBy(delta int) {
	if l.window == nil || delta == 0 {
		return
	}
	l.depth++
	defer func() { l.depth-- }()

	width := max(l.window.Width()+delta, CentralMinWidth)
	l.logger.Debug("resizing window", "delta", delta, "width", width)
	l.window.Resize(width)
}
