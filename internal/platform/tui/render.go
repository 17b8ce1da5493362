package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-automata/internal/core"
	"github.com/vovakirdan/tui-automata/internal/registry"
)

// palette holds the ANSI 256-color code for each core.Color. An empty code
// keeps the terminal's foreground.
var palette = [...]string{
	core.ColorDefault:       "",
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
	core.ColorBlack:         "236",
}

var cellStyles = func() []lipgloss.Style {
	styles := make([]lipgloss.Style, len(palette))
	for i, code := range palette {
		styles[i] = lipgloss.NewStyle()
		if code != "" {
			styles[i] = styles[i].Foreground(lipgloss.Color(code))
		}
	}
	return styles
}()

// styleFor falls back to the default style for colors outside the palette.
func styleFor(c core.Color) lipgloss.Style {
	if int(c) < len(cellStyles) {
		return cellStyles[c]
	}
	return cellStyles[core.ColorDefault]
}

// RenderScreen converts a Screen buffer to a styled string. Runs of cells in
// the same color share one escape sequence.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())
	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		renderRow(&sb, s, y)
	}
	return sb.String()
}

func renderRow(sb *strings.Builder, s *core.Screen, y int) {
	run := make([]rune, 0, s.Width())
	color := s.GetCell(0, y).Color
	flush := func() {
		if len(run) > 0 {
			sb.WriteString(styleFor(color).Render(string(run)))
			run = run[:0]
		}
	}
	for x := range s.Width() {
		c := s.GetCell(x, y)
		if c.Color != color {
			flush()
			color = c.Color
		}
		run = append(run, c.Rune)
	}
	flush()
}

// GlyphCount is how many cells on a screen show one glyph.
type GlyphCount struct {
	Rune  rune
	Color core.Color
	Count int
}

// Census counts the non-blank glyphs on s, most common first. Ties are
// ordered by rune.
func Census(s *core.Screen) []GlyphCount {
	index := make(map[core.Cell]int)
	var counts []GlyphCount
	for y := range s.Height() {
		for x := range s.Width() {
			c := s.GetCell(x, y)
			if c.Rune == ' ' {
				continue
			}
			i, ok := index[c]
			if !ok {
				i = len(counts)
				index[c] = i
				counts = append(counts, GlyphCount{Rune: c.Rune, Color: c.Color})
			}
			counts[i].Count++
		}
	}
	slices.SortFunc(counts, func(a, b GlyphCount) int {
		if n := cmp.Compare(b.Count, a.Count); n != 0 {
			return n
		}
		if n := cmp.Compare(a.Rune, b.Rune); n != 0 {
			return n
		}
		return cmp.Compare(a.Color, b.Color)
	})
	return counts
}

// CensusLine formats counts as "#:12  .:3". Unless plain, each glyph is drawn
// in its own color.
func CensusLine(counts []GlyphCount, plain bool) string {
	parts := make([]string, len(counts))
	for i, gc := range counts {
		glyph := string(gc.Rune)
		if !plain {
			glyph = styleFor(gc.Color).Render(glyph)
		}
		parts[i] = fmt.Sprintf("%s:%d", glyph, gc.Count)
	}
	return strings.Join(parts, "  ")
}

// RenderFrame draws sc at its own size and appends a census of the glyphs
// on the board.
func RenderFrame(sc registry.Scenario, plain bool) string {
	w, h := sc.Size()
	screen := core.NewScreen(w, h)
	sc.Render(screen)

	body := screen.String()
	if !plain {
		body = RenderScreen(screen)
	}
	return body + "\n" + CensusLine(Census(screen), plain)
}
