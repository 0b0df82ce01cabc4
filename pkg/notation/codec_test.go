package notation_test

import (
	"errors"
	"testing"

	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCodec(t *testing.T, files, ranks int) *notation.Codec {
	t.Helper()
	c, err := notation.NewCodec(files, ranks)
	require.NoError(t, err)
	return c
}

func TestNewCodec_InvalidShape(t *testing.T) {
	_, err := notation.NewCodec(0, 8)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	_, err = notation.NewCodec(8, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestDecode_Empty8x8(t *testing.T) {
	c := mustCodec(t, 8, 8)

	m, err := c.Decode("8/8/8/8/8/8/8/8")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Count())
	files, ranks := m.Dimensions()
	assert.Equal(t, 8, files)
	assert.Equal(t, 8, ranks)

	out, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, "8/8/8/8/8/8/8/8", out)
}

func TestDecode_Alternating(t *testing.T) {
	c := mustCodec(t, 8, 2)

	m, err := c.Decode("1c1c1c1c/c1c1c1c1")
	require.NoError(t, err)

	for file := 0; file < 8; file++ {
		top := m.At(domain.Cell{File: file, Rank: 1})
		bottom := m.At(domain.Cell{File: file, Rank: 0})
		if file%2 == 0 {
			assert.True(t, top.Empty(), "file %d rank 1", file)
			assert.Equal(t, domain.Square{"c"}, bottom, "file %d rank 0", file)
		} else {
			assert.Equal(t, domain.Square{"c"}, top, "file %d rank 1", file)
			assert.True(t, bottom.Empty(), "file %d rank 0", file)
		}
	}

	out, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, "1c1c1c1c/c1c1c1c1", out)
}

func TestDecode_StartPosition(t *testing.T) {
	c := mustCodec(t, 8, 8)

	m, err := c.Parse("start")
	require.NoError(t, err)
	assert.Equal(t, 32, m.Count())
	assert.Equal(t, domain.Square{"R"}, m.At(domain.Cell{File: 0, Rank: 0}))
	assert.Equal(t, domain.Square{"K"}, m.At(domain.Cell{File: 4, Rank: 0}))
	assert.Equal(t, domain.Square{"p"}, m.At(domain.Cell{File: 3, Rank: 6}))
	assert.Equal(t, domain.Square{"k"}, m.At(domain.Cell{File: 4, Rank: 7}))

	out, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, notation.StartPosition, out)
}

func TestDecode_MultiTokenCells(t *testing.T) {
	c := mustCodec(t, 4, 2)

	m, err := c.Decode("[K Q]2[wp]/[]3")
	require.NoError(t, err)
	assert.Equal(t, domain.Square{"K", "Q"}, m.At(domain.Cell{File: 0, Rank: 1}))
	assert.True(t, m.At(domain.Cell{File: 1, Rank: 1}).Empty())
	assert.Equal(t, domain.Square{"wp"}, m.At(domain.Cell{File: 3, Rank: 1}))
	assert.Equal(t, 0, len(m.At(domain.Cell{File: 0, Rank: 0})))

	out, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, "[K Q]2[wp]/4", out)
}

func TestDecode_MultiDigitRuns(t *testing.T) {
	c := mustCodec(t, 12, 1)

	m, err := c.Decode("a10b")
	require.NoError(t, err)
	assert.Equal(t, domain.Square{"a"}, m.At(domain.Cell{File: 0, Rank: 0}))
	assert.Equal(t, domain.Square{"b"}, m.At(domain.Cell{File: 11, Rank: 0}))

	out, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, "a10b", out)
}

func TestDecode_Errors(t *testing.T) {
	c := mustCodec(t, 8, 8)

	tests := []struct {
		name string
		text string
		row  int
	}{
		{"Empty", "", 0},
		{"Too Few Rows", "8/8/8/8/8/8/8", 0},
		{"Too Many Rows", "8/8/8/8/8/8/8/8/8", 0},
		{"Short Row", "8/8/8/7/8/8/8/8", 4},
		{"Long Row", "8/8/8/8/8/8/8/ppppppppp", 8},
		{"Run Overflows Row", "9/8/8/8/8/8/8/8", 1},
		{"Zero Run", "0p7/8/8/8/8/8/8/8", 1},
		{"Unterminated Bracket", "[K Q/8/8/8/8/8/8/8", 1},
		{"Stray Close", "]7/8/8/8/8/8/8/8", 1},
		{"Nested Bracket", "[K [Q]]6/8/8/8/8/8/8/8", 1},
		{"Whitespace", "p p6/8/8/8/8/8/8/8", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidNotation)

			var ne *domain.NotationError
			require.True(t, errors.As(err, &ne))
			assert.Equal(t, tt.row, ne.Row)
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	c := mustCodec(t, 2, 2)

	_, err := c.Encode(domain.NewMatrix(3, 2))
	assert.ErrorIs(t, err, domain.ErrInvalidNotation)

	ragged := domain.Matrix{make([]domain.Square, 2), make([]domain.Square, 1)}
	_, err = c.Encode(ragged)
	assert.ErrorIs(t, err, domain.ErrInvalidNotation)

	for _, label := range []string{"", "a b", "[", "x/y"} {
		m := domain.NewMatrix(2, 2)
		m.Add(domain.Cell{File: 0, Rank: 0}, label)
		_, err := c.Encode(m)
		assert.ErrorIs(t, err, domain.ErrInvalidNotation, "label %q", label)
	}
}

func TestRoundTrip(t *testing.T) {
	c := mustCodec(t, 3, 3)

	m := domain.NewMatrix(3, 3)
	m.Add(domain.Cell{File: 0, Rank: 0}, "N")
	m.Add(domain.Cell{File: 0, Rank: 0}, "n")
	m.Add(domain.Cell{File: 1, Rank: 1}, "7")
	m.Add(domain.Cell{File: 2, Rank: 2}, "♞")
	m.Add(domain.Cell{File: 2, Rank: 0}, "king")

	text, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, "2♞/1[7]1/[N n]1[king]", text)

	back, err := c.Decode(text)
	require.NoError(t, err)
	assert.True(t, m.Equal(back), "decode(encode(m)) should equal m")
}

func TestParse_Presets(t *testing.T) {
	c := mustCodec(t, 5, 3)

	m, err := c.Parse(" Empty ")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Count())
	files, ranks := m.Dimensions()
	assert.Equal(t, 5, files)
	assert.Equal(t, 3, ranks)

	_, err = c.Parse("start")
	assert.ErrorIs(t, err, domain.ErrInvalidNotation, "start only fits 8x8")

	assert.Equal(t, []string{"empty", "start"}, notation.Presets())
}
