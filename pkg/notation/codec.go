// Package notation implements the compact board notation: rows separated by '/',
// highest rank first, with decimal runs of empty cells, single-rune labels written
// literally and multi-token (or multi-rune) cells written as a bracketed list.
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
//	"1c1c1c1c/c1c1c1c1"
//	"[K Q]7/8/8/8/8/8/8/8"
package notation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/boardwalk/pkg/domain"
)

const (
	rowSeparator = '/'
	openCell     = '['
	closeCell    = ']'
)

// Codec encodes and decodes notation for a fixed grid shape.
type Codec struct {
	files int
	ranks int
}

// NewCodec creates a codec for a files x ranks grid.
func NewCodec(files, ranks int) (*Codec, error) {
	if files < 1 {
		return nil, &domain.ConfigError{Field: "files", Reason: "must be at least 1", Value: files}
	}
	if ranks < 1 {
		return nil, &domain.ConfigError{Field: "ranks", Reason: "must be at least 1", Value: ranks}
	}
	return &Codec{files: files, ranks: ranks}, nil
}

// Dimensions returns the grid shape the codec was built for.
func (c *Codec) Dimensions() (files, ranks int) {
	return c.files, c.ranks
}

// Decode parses notation text into a matrix. Surrounding whitespace is ignored.
func (c *Codec) Decode(text string) (domain.Matrix, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.NotationError{Notation: text, Reason: "empty notation"}
	}

	rows := strings.Split(text, string(rowSeparator))
	if len(rows) != c.ranks {
		return nil, &domain.NotationError{
			Notation: text,
			Reason:   fmt.Sprintf("has %d rows, want %d", len(rows), c.ranks),
		}
	}

	m := domain.NewMatrix(c.files, c.ranks)
	for i, row := range rows {
		cells, err := c.decodeRow(row)
		if err != nil {
			return nil, &domain.NotationError{Notation: text, Row: i + 1, Reason: err.Error()}
		}
		rank := c.ranks - 1 - i
		for file, sq := range cells {
			m[file][rank] = sq
		}
	}
	return m, nil
}

// decodeRow returns exactly c.files squares or an error describing the problem.
func (c *Codec) decodeRow(row string) ([]domain.Square, error) {
	cells := make([]domain.Square, 0, c.files)

	var (
		inCell bool
		buf    strings.Builder
		run    int
		inRun  bool
	)
	flushRun := func() error {
		if !inRun {
			return nil
		}
		inRun = false
		if run == 0 {
			return fmt.Errorf("empty run of zero cells")
		}
		for ; run > 0; run-- {
			cells = append(cells, nil)
		}
		return nil
	}

	for _, r := range row {
		if inCell {
			switch r {
			case openCell:
				return nil, fmt.Errorf("nested %q", openCell)
			case closeCell:
				inCell = false
				labels := strings.Fields(buf.String())
				buf.Reset()
				if len(labels) == 0 {
					cells = append(cells, nil)
				} else {
					cells = append(cells, domain.Square(labels))
				}
			default:
				buf.WriteRune(r)
			}
			continue
		}

		if r >= '0' && r <= '9' {
			inRun = true
			run = run*10 + int(r-'0')
			if run > c.files {
				return nil, fmt.Errorf("empty run exceeds %d files", c.files)
			}
			continue
		}
		if err := flushRun(); err != nil {
			return nil, err
		}

		switch {
		case r == openCell:
			inCell = true
		case r == closeCell:
			return nil, fmt.Errorf("unexpected %q", closeCell)
		case r == utf8.RuneError:
			return nil, fmt.Errorf("invalid UTF-8")
		case unicode.IsSpace(r):
			return nil, fmt.Errorf("unexpected whitespace outside brackets")
		default:
			cells = append(cells, domain.Square{string(r)})
		}
		if len(cells) > c.files {
			return nil, fmt.Errorf("more than %d columns", c.files)
		}
	}

	if inCell {
		return nil, fmt.Errorf("unterminated %q", openCell)
	}
	if err := flushRun(); err != nil {
		return nil, err
	}
	if len(cells) != c.files {
		return nil, fmt.Errorf("has %d columns, want %d", len(cells), c.files)
	}
	return cells, nil
}

// Encode writes a matrix as notation text. The matrix must match the codec shape and
// every label must be non-empty and free of whitespace, brackets and '/'.
func (c *Codec) Encode(m domain.Matrix) (string, error) {
	files, ranks := m.Dimensions()
	if !m.Rectangular() || files != c.files || ranks != c.ranks {
		return "", &domain.NotationError{
			Reason: fmt.Sprintf("matrix is not a %dx%d grid", c.files, c.ranks),
		}
	}

	var b strings.Builder
	for rank := c.ranks - 1; rank >= 0; rank-- {
		if rank != c.ranks-1 {
			b.WriteRune(rowSeparator)
		}
		run := 0
		for file := 0; file < c.files; file++ {
			sq := m[file][rank]
			if sq.Empty() {
				run++
				continue
			}
			if run > 0 {
				b.WriteString(strconv.Itoa(run))
				run = 0
			}
			for _, label := range sq {
				if err := ValidLabel(label); err != nil {
					return "", &domain.NotationError{
						Row:    c.ranks - rank,
						Reason: fmt.Sprintf("label %q at file %d: %v", label, file, err),
					}
				}
			}
			if len(sq) == 1 && isLiteral(sq[0]) {
				b.WriteString(sq[0])
				continue
			}
			b.WriteRune(openCell)
			b.WriteString(strings.Join(sq, " "))
			b.WriteRune(closeCell)
		}
		if run > 0 {
			b.WriteString(strconv.Itoa(run))
		}
	}
	return b.String(), nil
}

// ValidLabel reports why a token label cannot be written as notation, or nil when it can.
func ValidLabel(label string) error {
	if label == "" {
		return fmt.Errorf("empty label")
	}
	if !utf8.ValidString(label) {
		return fmt.Errorf("invalid UTF-8")
	}
	for _, r := range label {
		if unicode.IsSpace(r) || r == openCell || r == closeCell || r == rowSeparator {
			return fmt.Errorf("contains %q", r)
		}
	}
	return nil
}

// isLiteral reports whether a label can be written without brackets.
func isLiteral(label string) bool {
	r, size := utf8.DecodeRuneInString(label)
	if size != len(label) {
		return false
	}
	return !(r >= '0' && r <= '9')
}
