package domain

import (
	"math"
	"strconv"
)

// alphabetLength is the base of the horizontal part of a position label (A..Z).
const alphabetLength = 26

// maxFileLetters bounds the alphabetic prefix so decoding cannot overflow.
const maxFileLetters = 8

// Cell identifies one square of the grid. File and Rank are zero-based;
// rank 0 is the bottom row.
type Cell struct {
	File int `json:"file"`
	Rank int `json:"rank"`
}

// Parity returns (file+rank) mod 2, the "colour" of the square.
func (c Cell) Parity() int {
	return (c.File + c.Rank) & 1
}

// DistanceSquared returns the squared Euclidean distance in grid units.
func (c Cell) DistanceSquared(o Cell) int {
	df := c.File - o.File
	dr := c.Rank - o.Rank
	return df*df + dr*dr
}

// Point is a pixel coordinate in board space (origin top-left).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Geometry describes the fixed shape of a board.
// It doubles as the coordinate mapper between cells, labels and pixels.
type Geometry struct {
	// Files is the number of columns (blocks in a row).
	Files int `json:"files"`
	// Ranks is the number of rows (blocks in a column).
	Ranks int `json:"ranks"`
	// BlockSize is the side of one square in pixels.
	BlockSize float64 `json:"block_size"`
	// BlockMargin is the gap between two adjacent squares in pixels.
	BlockMargin float64 `json:"block_margin"`
	// Edge is the border around the grid, where border labels are drawn.
	Edge float64 `json:"edge"`
}

// DefaultGeometry returns an 8x8 board with 60px squares and no margins.
func DefaultGeometry() Geometry {
	return Geometry{Files: 8, Ranks: 8, BlockSize: 60}
}

// Validate checks the geometry invariants.
func (g Geometry) Validate() error {
	if g.Files < 1 {
		return &ConfigError{Field: "files", Reason: "must be at least 1", Value: g.Files}
	}
	if g.Ranks < 1 {
		return &ConfigError{Field: "ranks", Reason: "must be at least 1", Value: g.Ranks}
	}
	if !(g.BlockSize > 0) || math.IsInf(g.BlockSize, 0) {
		return &ConfigError{Field: "block_size", Reason: "must be a positive number", Value: g.BlockSize}
	}
	if g.BlockMargin < 0 || math.IsNaN(g.BlockMargin) || math.IsInf(g.BlockMargin, 0) {
		return &ConfigError{Field: "block_margin", Reason: "must not be negative", Value: g.BlockMargin}
	}
	if g.Edge < 0 || math.IsNaN(g.Edge) || math.IsInf(g.Edge, 0) {
		return &ConfigError{Field: "edge", Reason: "must not be negative", Value: g.Edge}
	}
	return nil
}

// Contains reports whether c lies inside the grid.
func (g Geometry) Contains(c Cell) bool {
	return c.File >= 0 && c.File < g.Files && c.Rank >= 0 && c.Rank < g.Ranks
}

// LabelWidth is the number of letters used for the file part of a label:
// ceil(log26(Files)), at least 1.
func (g Geometry) LabelWidth() int {
	width := 1
	for capacity := alphabetLength; capacity < g.Files; capacity *= alphabetLength {
		width++
	}
	return width
}

// Label encodes a cell as a position label such as "H3".
// The file part is always LabelWidth letters wide, padded with 'A'.
func (g Geometry) Label(c Cell) string {
	width := g.LabelWidth()
	buf := make([]byte, width, width+4)
	v := c.File
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte('A' + v%alphabetLength)
		v /= alphabetLength
	}
	buf = strconv.AppendInt(buf, int64(c.Rank+1), 10)
	return string(buf)
}

// ParseLabel decodes a position label. Letters are case-insensitive. A file part shorter
// than LabelWidth is read as if padded with leading 'A's; a longer one is rejected, as is
// a rank written with a leading zero.
func (g Geometry) ParseLabel(label string) (Cell, error) {
	if label == "" {
		return Cell{}, &LabelError{Label: label, Reason: "empty label"}
	}

	width := min(g.LabelWidth(), maxFileLetters)
	i := 0
	file := 0
	for i < len(label) && isLetter(label[i]) {
		if i == width {
			return Cell{}, &LabelError{Label: label, Reason: "too many file letters"}
		}
		file = file*alphabetLength + int(toUpper(label[i])-'A')
		i++
	}
	if i == 0 {
		return Cell{}, &LabelError{Label: label, Reason: "file letters outside the alphabet"}
	}
	digits := label[i:]
	if digits == "" {
		return Cell{}, &LabelError{Label: label, Reason: "missing rank number"}
	}
	if digits[0] == '0' {
		return Cell{}, &LabelError{Label: label, Reason: "rank has a leading zero"}
	}
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return Cell{}, &LabelError{Label: label, Reason: "rank is not a positive integer"}
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return Cell{}, &LabelError{Label: label, Reason: "rank is not a positive integer"}
	}

	c := Cell{File: file, Rank: n - 1}
	if !g.Contains(c) {
		return Cell{}, &LabelError{Label: label, Reason: "outside the board"}
	}
	return c, nil
}

func (g Geometry) pitch() float64 {
	return g.BlockSize + g.BlockMargin
}

// Center returns the pixel coordinate of the centre of a cell.
// Rank 0 is rendered at the bottom.
func (g Geometry) Center(c Cell) Point {
	p := g.pitch()
	return Point{
		X: g.Edge + float64(c.File)*p + g.BlockSize/2,
		Y: g.Edge + float64(g.Ranks-1-c.Rank)*p + g.BlockSize/2,
	}
}

// CellAt returns the cell under a pixel. It reports false for points on the edge,
// in the gap between squares or outside the board.
func (g Geometry) CellAt(pt Point) (Cell, bool) {
	p := g.pitch()
	x := pt.X - g.Edge
	y := pt.Y - g.Edge
	if x < 0 || y < 0 {
		return Cell{}, false
	}
	col := math.Floor(x / p)
	row := math.Floor(y / p)
	if x-col*p >= g.BlockSize || y-row*p >= g.BlockSize {
		return Cell{}, false
	}
	c := Cell{File: int(col), Rank: g.Ranks - 1 - int(row)}
	if !g.Contains(c) {
		return Cell{}, false
	}
	return c, true
}

// Size returns the full pixel size of the board including the edge.
func (g Geometry) Size() (width, height float64) {
	width = 2*g.Edge + float64(g.Files)*g.BlockSize + float64(g.Files-1)*g.BlockMargin
	height = 2*g.Edge + float64(g.Ranks)*g.BlockSize + float64(g.Ranks-1)*g.BlockMargin
	return width, height
}

// BoardCenter is the pixel centre of the whole board, where new tokens appear.
func (g Geometry) BoardCenter() Point {
	w, h := g.Size()
	return Point{X: w / 2, Y: h / 2}
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
