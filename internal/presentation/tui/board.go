package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/muesli/termenv"

	"github.com/aretw0/boardwalk/pkg/domain"
)

const (
	lightSquare = "#f0d9b5"
	darkSquare  = "#b58863"
	tokenColor  = "#1a1a1a"
)

// BoardView renders a matrix as a coloured text grid.
type BoardView struct {
	// Profile selects the colour capabilities. termenv.Ascii yields plain text.
	Profile termenv.Profile
	// Glyphs optionally maps labels to the character drawn for them.
	Glyphs map[string]string
	// Focus highlights one square label.
	Focus string
}

// NewBoardView returns a view using the terminal's colour profile.
func NewBoardView(glyphs map[string]string) BoardView {
	return BoardView{Profile: termenv.ColorProfile(), Glyphs: glyphs}
}

// Render draws m with rank labels on the left and file labels below.
// A square holding several tokens shows its first label followed by '+'.
func (v BoardView) Render(g domain.Geometry, m domain.Matrix) string {
	width := g.LabelWidth() + 2
	rankWidth := len(fmt.Sprint(g.Ranks))
	focus, hasFocus := domain.Cell{}, false
	if v.Focus != "" {
		if c, err := g.ParseLabel(v.Focus); err == nil {
			focus, hasFocus = c, true
		}
	}

	var sb strings.Builder
	for rank := g.Ranks - 1; rank >= 0; rank-- {
		sb.WriteString(fmt.Sprintf("%*d ", rankWidth, rank+1))
		for file := 0; file < g.Files; file++ {
			c := domain.Cell{File: file, Rank: rank}
			text := center(v.squareText(m.At(c)), width)

			bg := lightSquare
			if c.Parity() == 0 {
				bg = darkSquare
			}
			style := v.Profile.String(text).Foreground(v.Profile.Color(tokenColor)).Background(v.Profile.Color(bg))
			if hasFocus && c == focus {
				style = style.Bold().Underline()
			}
			sb.WriteString(style.String())
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat(" ", rankWidth+1))
	for file := 0; file < g.Files; file++ {
		label := g.Label(domain.Cell{File: file})
		sb.WriteString(center(strings.TrimRight(label, "0123456789"), width))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (v BoardView) squareText(sq domain.Square) string {
	if sq.Empty() {
		return "·"
	}
	text := sq[0]
	if glyph, ok := v.Glyphs[text]; ok {
		text = glyph
	}
	if len(sq) > 1 {
		text += "+"
	}
	return text
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
