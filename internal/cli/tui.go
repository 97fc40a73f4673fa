package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/matelas/pkg/errors"
	"github.com/matzehuels/matelas/pkg/tufting"
)

// Preview styles
var (
	previewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	previewDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	previewFrameStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	previewPointStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	previewFirstStyle    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	previewErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// Grid glyphs
const (
	glyphPoint = "•"
	glyphFirst = "◉"
	glyphEmpty = " "
)

// =============================================================================
// PreviewModel - Interactive layout preview
// =============================================================================

// previewField is one adjustable parameter of the preview form.
type previewField struct {
	label string
	step  float64
	min   float64
	value func(*tufting.Params) *float64
}

var previewFields = []previewField{
	{"Width", 5, 1, func(p *tufting.Params) *float64 { return &p.Width }},
	{"Height", 5, 1, func(p *tufting.Params) *float64 { return &p.Height }},
	{"Min dist X", 1, 1, func(p *tufting.Params) *float64 { return &p.MinDistX }},
	{"Min dist Y", 1, 1, func(p *tufting.Params) *float64 { return &p.MinDistY }},
	{"Edge", 1, 0, func(p *tufting.Params) *float64 { return &p.EdgeDistance }},
}

// PreviewModel is the bubbletea model for the interactive layout preview.
// The layout is recomputed on every change; invalid parameters keep the
// previous layout on screen together with the error.
type PreviewModel struct {
	Params    tufting.Params
	Initial   tufting.Params
	MaxPoints int
	Layout    *tufting.Layout
	Err       error
	Cursor    int

	// Canvas size in terminal cells.
	Width  int
	Height int
}

// NewPreviewModel creates a preview model and computes its first layout.
func NewPreviewModel(p tufting.Params, maxPoints int) PreviewModel {
	m := PreviewModel{
		Params:    p,
		Initial:   p,
		MaxPoints: maxPoints,
		Width:     60,
		Height:    20,
	}
	m.recompute()
	return m
}

func (m *PreviewModel) recompute() {
	l, err := tufting.Compute(m.Params, tufting.WithMaxPoints(m.MaxPoints))
	m.Err = err
	if err == nil {
		m.Layout = l
	}
}

// adjust moves the selected field by delta steps, clamped to its minimum.
func (m *PreviewModel) adjust(delta float64) {
	f := previewFields[m.Cursor]
	v := f.value(&m.Params)
	*v = math.Max(f.min, math.Round((*v+delta*f.step)*100)/100)
	m.recompute()
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k", "shift+tab":
			m.Cursor = (m.Cursor + len(previewFields) - 1) % len(previewFields)
		case "down", "j", "tab":
			m.Cursor = (m.Cursor + 1) % len(previewFields)
		case "right", "l", "+", "=":
			m.adjust(1)
		case "left", "h", "-":
			m.adjust(-1)
		case "L", "]":
			m.adjust(10)
		case "H", "[":
			m.adjust(-10)
		case "r":
			m.Params = m.Initial
			m.recompute()
		}
	case tea.WindowSizeMsg:
		m.Width = max(20, msg.Width-30)
		m.Height = max(8, msg.Height-8)
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var form strings.Builder
	form.WriteString(StyleTitle.Render("Tufting Preview"))
	form.WriteString("\n\n")
	for i, f := range previewFields {
		line := fmt.Sprintf("%-11s %8s cm", f.label, formatCM(*f.value(&m.Params)))
		if i == m.Cursor {
			form.WriteString(previewSelectedStyle.Render("▸ " + line))
		} else {
			form.WriteString(previewNormalStyle.Render("  " + line))
		}
		form.WriteString("\n")
	}
	form.WriteString("\n")
	if m.Layout != nil {
		form.WriteString(StyleNumber.Render(fmt.Sprintf("%d", m.Layout.Count())) + " points\n")
		form.WriteString(fmt.Sprintf("%d x %d intervals\n", m.Layout.Columns, m.Layout.Rows))
		form.WriteString(StyleHighlight.Render(fmt.Sprintf("dx %s  dy %s", formatCM(m.Layout.Dx), formatCM(m.Layout.Dy))))
		form.WriteString("\n")
	}
	if m.Err != nil {
		form.WriteString("\n" + previewErrorStyle.Width(26).Render(errors.UserMessage(m.Err)) + "\n")
	}

	var canvas string
	if m.Layout != nil {
		canvas = previewFrameStyle.Render(drawGrid(m.Layout, m.Width, m.Height))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, form.String(), "  ", canvas))
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render("↑/↓ field  ←/→ adjust  [/] ×10  r reset  q quit"))
	return b.String()
}

// =============================================================================
// Terminal canvas
// =============================================================================

// drawGrid plots the layout's points on a cols x rows character canvas,
// keeping the rectangle's aspect ratio (terminal cells are about twice as tall
// as they are wide). The first point is drawn with its own glyph.
func drawGrid(l *tufting.Layout, cols, rows int) string {
	w, h := l.Params.Width, l.Params.Height
	if w <= 0 || h <= 0 || cols < 2 || rows < 2 {
		return ""
	}
	scale := math.Min(float64(cols-1)/w, 2*float64(rows-1)/h)
	gw := int(math.Round(w*scale)) + 1
	gh := int(math.Round(h*scale/2)) + 1

	cells := make([][]string, gh)
	for r := range cells {
		cells[r] = make([]string, gw)
		for c := range cells[r] {
			cells[r][c] = glyphEmpty
		}
	}

	for i, p := range l.Points {
		c := int(math.Round(p.X / w * float64(gw-1)))
		r := gh - 1 - int(math.Round(p.Y/h*float64(gh-1)))
		if r < 0 || r >= gh || c < 0 || c >= gw {
			continue
		}
		if i == 0 {
			cells[r][c] = previewFirstStyle.Render(glyphFirst)
		} else if cells[r][c] == glyphEmpty {
			cells[r][c] = previewPointStyle.Render(glyphPoint)
		}
	}

	lines := make([]string, gh)
	for r, row := range cells {
		lines[r] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}
