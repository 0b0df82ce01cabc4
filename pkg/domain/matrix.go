package domain

// Square holds the token labels occupying one cell. A nil or empty Square is an empty cell.
type Square []string

// Empty reports whether no token occupies the square.
func (s Square) Empty() bool {
	return len(s) == 0
}

// Matrix is a file-major board description: Matrix[file][rank] lists the labels on that cell.
type Matrix [][]Square

// NewMatrix returns an all-empty matrix of the given dimensions.
func NewMatrix(files, ranks int) Matrix {
	m := make(Matrix, files)
	for f := range m {
		m[f] = make([]Square, ranks)
	}
	return m
}

// Dimensions returns the number of files and the number of ranks of the first column.
func (m Matrix) Dimensions() (files, ranks int) {
	if len(m) == 0 {
		return 0, 0
	}
	return len(m), len(m[0])
}

// Rectangular reports whether every column has the same length.
func (m Matrix) Rectangular() bool {
	_, ranks := m.Dimensions()
	for _, col := range m {
		if len(col) != ranks {
			return false
		}
	}
	return true
}

// At returns the square at c, or nil when c is outside the matrix.
func (m Matrix) At(c Cell) Square {
	if c.File < 0 || c.File >= len(m) || c.Rank < 0 || c.Rank >= len(m[c.File]) {
		return nil
	}
	return m[c.File][c.Rank]
}

// Add appends a label to the square at c. c must be inside the matrix.
func (m Matrix) Add(c Cell, label string) {
	m[c.File][c.Rank] = append(m[c.File][c.Rank], label)
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for f, col := range m {
		out[f] = make([]Square, len(col))
		for r, sq := range col {
			if len(sq) > 0 {
				out[f][r] = append(Square(nil), sq...)
			}
		}
	}
	return out
}

// Count returns the total number of labels on the board.
func (m Matrix) Count() int {
	n := 0
	for _, col := range m {
		for _, sq := range col {
			n += len(sq)
		}
	}
	return n
}

// Equal compares two matrices cell by cell. Empty and nil squares are equal;
// label order inside a square is significant.
func (m Matrix) Equal(o Matrix) bool {
	if len(m) != len(o) {
		return false
	}
	for f := range m {
		if len(m[f]) != len(o[f]) {
			return false
		}
		for r := range m[f] {
			a, b := m[f][r], o[f][r]
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
		}
	}
	return true
}
