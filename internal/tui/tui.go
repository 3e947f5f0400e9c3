// Package tui is the interactive palette picker: wallpapers on the left, the
// extracted colours in the middle and the active integration's colour fields
// on the right.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/kuntatinte/internal/app"
	"github.com/jmylchreest/kuntatinte/internal/backend"
	"github.com/jmylchreest/kuntatinte/internal/colour"
	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/state"
)

// cellWidth is the number of layout units one terminal column stands for.
const cellWidth = 8

// Backend is what the picker needs from the extraction backend.
type Backend interface {
	app.Backend
	ListImages(folder string) ([]string, error)
	SetAsWallpaper(path string) string
	AvailableSettings() []string
	PanelWidth(name string) int
	Keys(integration string) []string
}

// panelIntegrations maps settings panel labels to their field groups.
var panelIntegrations = map[string]string{
	"Fastfetch":               state.IntegrationFastfetch,
	"Starship":                state.IntegrationStarship,
	"Ulauncher":               state.IntegrationUlauncher,
	"Kuntatinte Color Scheme": state.IntegrationColorScheme,
}

var modes = []string{"dark", "light", "auto"}

// terminal adapts the terminal to state.Window. A terminal cannot be resized
// from inside, so Resize only changes the width the panels are drawn in.
type terminal struct {
	columns int
	width   int
}

func (t *terminal) Width() int { return t.width }

func (t *terminal) Resize(width int) { t.width = min(width, t.columns*cellWidth) }

func (t *terminal) setColumns(columns int) {
	t.columns = columns
	t.width = columns * cellWidth
}

type eventMsg struct{ event app.Event }

// promptKind is what the hex prompt writes to when it is confirmed.
type promptKind int

const (
	promptNone promptKind = iota
	promptSwatch
	promptField
)

// Model is the picker's bubbletea model.
type Model struct {
	app     *app.App
	backend Backend
	term    *terminal
	watcher *folderWatcher
	logger  hclog.Logger

	folder string
	images []string
	cursor int
	panels []string
	panel  int
	field  int
	height int
	status string

	prompt      promptKind
	promptIndex int
	input       textinput.Model
}

// Run opens the picker on folder and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, b *backend.Backend, folder string, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	m := newModel(b, config.ExpandPath(folder), logger)
	if w, err := watchFolder(m.folder, logger.Named("watch")); err != nil {
		logger.Warn("not watching wallpapers folder", "folder", m.folder, "error", err)
	} else {
		m.watcher = w
		defer w.Close()
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

func newModel(b Backend, folder string, logger hclog.Logger) Model {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	panels := b.AvailableSettings()
	widths := make(map[string]int, len(panels))
	for _, label := range panels {
		widths[panelKey(label)] = b.PanelWidth(label)
	}
	input := textinput.New()
	input.Placeholder = "#rrggbb"
	input.CharLimit = 7

	term := &terminal{}
	m := Model{
		app:     app.New(b, term, widths, logger.Named("app")),
		backend: b,
		term:    term,
		logger:  logger,
		folder:  folder,
		panels:  panels,
		input:   input,
	}
	m.activatePanel(0)
	m.reload()
	return m
}

// activatePanel shows settings panel i and fills its empty fields from the
// integration's config section.
func (m *Model) activatePanel(i int) {
	if len(m.panels) == 0 {
		return
	}
	m.panel = i % len(m.panels)
	m.field = 0
	m.app.Layout.SetSettingsPanel(panelKey(m.panels[m.panel]))
	if name := m.integration(); name != "" {
		m.app.LoadConfigFields(name, m.keys())
	}
}

// panelKey turns a panel label into its panel_width config key.
func panelKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// reload lists the wallpapers folder, keeping the cursor on the same image
// while it is still there.
func (m *Model) reload() {
	images, err := m.backend.ListImages(m.folder)
	if err != nil {
		m.logger.Warn("listing wallpapers", "folder", m.folder, "error", err)
		m.status = err.Error()
		return
	}
	current := m.currentImage()
	m.images = images
	m.cursor = max(0, slices.Index(images, current))
}

func (m Model) currentImage() string {
	if m.cursor < 0 || m.cursor >= len(m.images) {
		return ""
	}
	return m.images[m.cursor]
}

func (m Model) integration() string {
	if len(m.panels) == 0 {
		return ""
	}
	return panelIntegrations[m.panels[m.panel]]
}

// keys lists the fields of the active settings panel.
func (m Model) keys() []string {
	name := m.integration()
	if name == "" {
		return nil
	}
	if keys := m.backend.Keys(name); len(keys) > 0 {
		return keys
	}
	return m.app.Fields.Keys(name)
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitEvent()}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.wait())
	}
	return tea.Batch(cmds...)
}

// waitEvent delivers the next backend completion.
func (m Model) waitEvent() tea.Cmd {
	events := m.backend.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg{event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.term.setColumns(msg.Width)
		m.height = msg.Height
		m.app.Layout.WidthChanged(msg.Width*cellWidth, state.UserInitiated)
	case eventMsg:
		m.app.Dispatch(msg.event)
		return m, m.waitEvent()
	case folderChangedMsg:
		m.reload()
		if m.watcher != nil {
			return m, m.watcher.wait()
		}
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != promptNone && msg.String() != "ctrl+c" {
		return m.handlePrompt(msg)
	}
	reg := m.app.Registry
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.app.ClearNotice()
	case "up":
		m.cursor = max(0, m.cursor-1)
	case "down":
		m.cursor = max(0, min(len(m.images)-1, m.cursor+1))
	case "enter":
		if img := m.currentImage(); img != "" {
			m.app.ClearNotice()
			m.app.LoadImage(img)
		}
	case "left":
		m.moveSelection(-1)
	case "right":
		m.moveSelection(1)
	case "[":
		reg.SetStep(reg.Step() - 1)
	case "]":
		reg.SetStep(reg.Step() + 1)
	case "m":
		m.app.SetMethod(next(methodNames(), reg.Method()))
	case "d":
		m.app.SetMode(next(modes, reg.Mode()))
	case "tab":
		m.activatePanel(m.panel + 1)
	case "1":
		m.app.Layout.Toggle(state.LeftPanel)
	case "2":
		m.app.Layout.Toggle(state.RightPanel)
	case "j":
		m.field = max(0, min(len(m.keys())-1, m.field+1))
	case "k":
		m.field = max(0, m.field-1)
	case " ", "space":
		m.copySelection()
	case "e":
		sel := reg.Selection()
		switch {
		case reg.Method() != state.MethodCustom:
			m.status = "Switch to the Custom method to edit swatches"
		case sel.Kind != state.SelectPalette:
			m.status = "Select a palette swatch to edit"
		default:
			return m.openPrompt(promptSwatch, sel.Index, reg.SelectedColor())
		}
	case "p":
		if name, key := m.fieldTarget(); key != "" {
			return m.openPrompt(promptField, 0, m.app.Fields.Value(name, key))
		}
	case "g":
		if sel := reg.Selection(); sel.Kind == state.SelectSeed {
			m.app.GenerateFromSeed(sel.Index)
		} else {
			m.status = "Select a seed colour to generate from"
		}
	case "a":
		m.runIntegration("applied", m.app.ApplyIntegration)
	case "r":
		m.runIntegration("restored", m.app.RestoreIntegration)
	case "l":
		m.runIntegration("loaded", m.app.LoadIntegration)
	case "w":
		if img := m.currentImage(); img != "" {
			if errMsg := m.backend.SetAsWallpaper(img); errMsg != "" {
				m.status = errMsg
			} else {
				m.status = "Wallpaper set to " + filepath.Base(img)
			}
		}
	}
	return m, nil
}

// openPrompt asks for a hex colour. current is shown as the placeholder.
func (m Model) openPrompt(kind promptKind, index int, current string) (tea.Model, tea.Cmd) {
	m.prompt, m.promptIndex = kind, index
	m.input.Reset()
	m.input.Placeholder = "#rrggbb"
	if current != "" {
		m.input.Placeholder = current
	}
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	case "enter":
		kind, value := m.prompt, strings.TrimSpace(m.input.Value())
		m.prompt = promptNone
		m.input.Blur()
		switch kind {
		case promptSwatch:
			if m.app.EditSwatch(m.promptIndex, value) == "" {
				m.status = fmt.Sprintf("Swatch %d set to %s", m.promptIndex, m.app.Registry.Palette()[m.promptIndex])
			}
		case promptField:
			name, key := m.fieldTarget()
			if key != "" && m.app.PickField(name, key, value) == "" {
				m.status = fmt.Sprintf("%s %s set to %s", name, key, m.app.Fields.Value(name, key))
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func methodNames() []string {
	var names []string
	for _, method := range colour.ValidMethods() {
		names = append(names, string(method))
	}
	return names
}

// next returns the value after current, wrapping around. Unknown values
// start from the first.
func next(values []string, current string) string {
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}

// selections lists every selectable colour in display order.
func (m Model) selections() []state.Selection {
	reg := m.app.Registry
	var out []state.Selection
	for i := range reg.Palette() {
		out = append(out, state.Palette(i))
	}
	if reg.Accent() != "" {
		out = append(out, state.Accent())
	}
	for i := range reg.Seeds() {
		out = append(out, state.Seed(i))
	}
	return out
}

func (m *Model) moveSelection(delta int) {
	sels := m.selections()
	if len(sels) == 0 {
		return
	}
	i := slices.Index(sels, m.app.Registry.Selection())
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = len(sels) - 1
	default:
		i = (i + delta + len(sels)) % len(sels)
	}
	m.app.Registry.Select(sels[i])
}

// fieldTarget returns the integration and key under the field cursor. key is
// empty when the panel has no fields.
func (m Model) fieldTarget() (string, string) {
	keys := m.keys()
	if len(keys) == 0 {
		return "", ""
	}
	return m.integration(), keys[min(m.field, len(keys)-1)]
}

func (m *Model) copySelection() {
	name, key := m.fieldTarget()
	if key == "" {
		return
	}
	if !m.app.Fields.FromSelection(name, key) {
		m.status = "Nothing selected"
		return
	}
	m.status = fmt.Sprintf("%s %s set to %s", name, key, m.app.Fields.Value(name, key))
}

// runIntegration runs an integration action. Failures surface through the
// application notice.
func (m *Model) runIntegration(done string, action func(string) string) {
	name := m.integration()
	if name == "" {
		return
	}
	if action(name) == "" {
		m.status = fmt.Sprintf("%s %s", name, done)
	}
}

func (m Model) View() string {
	cols := m.term.Width() / cellWidth
	if cols == 0 {
		return ""
	}
	height := max(m.height-2, 5)

	left, right := 0, 0
	if m.app.Layout.LeftVisible() {
		left = state.WallpapersMinWidth / cellWidth
	}
	if m.app.Layout.RightVisible() && len(m.panels) > 0 {
		right = m.app.Layout.SettingsWidth(m.app.Layout.SettingsPanel()) / cellWidth
	}
	center := max(cols-left-right, 20)

	var panels []string
	if left > 0 {
		panels = append(panels, panelStyle.Width(left-1).Height(height).Render(m.viewWallpapers(height)))
	}
	panels = append(panels, lipgloss.NewStyle().Width(center).Height(height).PaddingLeft(1).Render(m.viewColours()))
	if right > 0 {
		panels = append(panels, panelStyle.BorderRight(false).BorderLeft(true).PaddingLeft(1).Width(right-1).Height(height).Render(m.viewSettings()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...) + "\n" + m.viewStatus()
}

func (m Model) viewWallpapers(height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Wallpapers") + "\n")
	if len(m.images) == 0 {
		b.WriteString(mutedStyle.Render("No images in " + m.folder))
		return b.String()
	}
	rows := max(height-1, 1)
	start := max(0, min(m.cursor-rows/2, len(m.images)-rows))
	end := min(len(m.images), start+rows)
	for i := start; i < end; i++ {
		line := "  " + filepath.Base(m.images[i])
		if m.images[i] == m.app.Registry.Image() {
			line = "* " + filepath.Base(m.images[i])
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) viewColours() string {
	reg := m.app.Registry
	sel := reg.Selection()

	var b strings.Builder
	title := "No wallpaper loaded"
	if img := reg.Image(); img != "" {
		title = filepath.Base(img)
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("method %s  mode %s", reg.Method(), reg.Mode())) + "\n\n")

	b.WriteString("Palette\n")
	for i, c := range reg.Palette() {
		b.WriteString(swatch(c, 4, sel == state.Palette(i)))
		if i%8 == 7 {
			b.WriteString("\n")
		}
	}
	if n := len(reg.Palette()); n%8 != 0 {
		b.WriteString("\n")
	}

	b.WriteString("\nAccent\n")
	b.WriteString(swatch(reg.Accent(), 4, sel == state.Accent()) + " " + reg.Accent() + "\n")

	b.WriteString("\nSeeds\n")
	for i, c := range reg.Seeds() {
		b.WriteString(swatch(c, 4, sel == state.Seed(i)))
	}
	b.WriteString("\n\n")

	step := reg.Step()
	bar := strings.Repeat("-", step) + "o" + strings.Repeat("-", state.MaxStep-step)
	fmt.Fprintf(&b, "Tone [%s] %.0f%%\n\n", bar, reg.Percent())

	if c := reg.SelectedColor(); c != "" {
		fmt.Fprintf(&b, "Selected %s %s %s\n", sel, swatch(c, 2, false), c)
	}
	return b.String()
}

func (m Model) viewSettings() string {
	name := m.integration()
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.panels[m.panel]) + "\n")
	keys := m.keys()
	if len(keys) == 0 {
		b.WriteString(mutedStyle.Render("No colour fields"))
		return b.String()
	}
	for i, key := range keys {
		f := m.app.Fields.Get(name, key)
		cursor := "  "
		if i == m.field {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s %s %s", cursor, swatch(f.Value, 2, false), key, f.Value)
		if f.Provenance != state.ProvenanceNone {
			line += " " + mutedStyle.Render("("+string(f.Provenance)+")")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) viewStatus() string {
	switch m.prompt {
	case promptSwatch:
		return fmt.Sprintf("Swatch %d %s", m.promptIndex, m.input.View())
	case promptField:
		_, key := m.fieldTarget()
		return key + " " + m.input.View()
	}
	if notice := m.app.Notice(); notice != "" {
		return noticeStyle.Render(notice)
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return statusStyle.Render("enter extract  left/right select  [ ] tone  tab panel  a apply  q quit")
}
