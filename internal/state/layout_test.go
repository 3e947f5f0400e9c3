package state

import "testing"

// fakeWindow records resizes and, like a real host, reports the new width
// back to the layout synchronously.
type fakeWindow struct {
	width   int
	resizes []int
	layout  *Layout
}

func (w *fakeWindow) Width() int { return w.width }

func (w *fakeWindow) Resize(width int) {
	w.width = width
	w.resizes = append(w.resizes, width)
	if w.layout != nil {
		w.layout.WidthChanged(width, UserInitiated)
	}
}

func newTestLayout(width int) (*Layout, *fakeWindow) {
	w := &fakeWindow{width: width}
	l := NewLayout(w, map[string]int{"starship": 300, "color_scheme": 420}, nil)
	l.SetSettingsPanel("starship")
	w.width, w.resizes = width, nil
	w.layout = l
	return l, w
}

func TestLayoutCollapsesRightBeforeLeft(t *testing.T) {
	tests := []struct {
		name      string
		available int
		left      bool
		right     bool
	}{
		{name: "enough room", available: 950, left: true, right: true},
		{name: "just short", available: 949, left: true, right: false},
		{name: "room for wallpapers", available: 650, left: true, right: false},
		{name: "central only", available: 649, left: false, right: false},
		{name: "tiny", available: 10, left: false, right: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLayout(1200)
			l.WidthChanged(tt.available, UserInitiated)
			if l.LeftVisible() != tt.left || l.RightVisible() != tt.right {
				t.Errorf("visible = (%v, %v), want (%v, %v)", l.LeftVisible(), l.RightVisible(), tt.left, tt.right)
			}
		})
	}
}

func TestLayoutNoAutoExpand(t *testing.T) {
	l, _ := newTestLayout(1200)
	l.WidthChanged(500, UserInitiated)
	l.WidthChanged(3000, UserInitiated)
	if l.LeftVisible() || l.RightVisible() {
		t.Error("panels re-expanded without user action")
	}
}

func TestLayoutIgnoresProgrammaticChanges(t *testing.T) {
	l, _ := newTestLayout(1200)
	l.WidthChanged(100, ProgrammaticResize)
	if !l.LeftVisible() || !l.RightVisible() {
		t.Error("programmatic width change collapsed panels")
	}
}

func TestLayoutToggle(t *testing.T) {
	l, w := newTestLayout(1200)

	l.Toggle(RightPanel)
	if l.RightVisible() {
		t.Fatal("right panel still visible after toggle")
	}
	if w.width != 1200-301 {
		t.Errorf("width after hiding right = %d, want %d", w.width, 1200-301)
	}

	l.Toggle(LeftPanel)
	if l.LeftVisible() || w.width != 899-251 {
		t.Errorf("after hiding left: visible=%v width=%d", l.LeftVisible(), w.width)
	}

	l.Toggle(LeftPanel)
	l.Toggle(RightPanel)
	if !l.LeftVisible() || !l.RightVisible() || w.width != 1200 {
		t.Errorf("after showing both: (%v, %v) width=%d", l.LeftVisible(), l.RightVisible(), w.width)
	}
}

func TestLayoutSettingsPanelDelta(t *testing.T) {
	l, w := newTestLayout(1200)

	l.SetSettingsPanel("color_scheme")
	if w.width != 1320 {
		t.Errorf("width after wider panel = %d, want 1320", w.width)
	}

	l.SetSettingsPanel("ulauncher")
	if w.width != 1320-420+DefaultSettingsWidth {
		t.Errorf("width after default panel = %d, want %d", w.width, 1320-420+DefaultSettingsWidth)
	}
	if !l.LeftVisible() || !l.RightVisible() {
		t.Error("programmatic resize collapsed panels")
	}
	if l.Resizing() {
		t.Error("resize depth not released")
	}

	l.Toggle(RightPanel)
	before := w.width
	l.SetSettingsPanel("color_scheme")
	if w.width != before {
		t.Errorf("hidden settings panel still resized window: %d -> %d", before, w.width)
	}
}
