package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometry_LabelWidth(t *testing.T) {
	tests := []struct {
		files int
		want  int
	}{
		{1, 1}, {8, 1}, {26, 1}, {27, 2}, {676, 2}, {677, 3},
	}
	for _, tt := range tests {
		g := domain.Geometry{Files: tt.files, Ranks: 1, BlockSize: 10}
		assert.Equal(t, tt.want, g.LabelWidth(), "files=%d", tt.files)
	}
}

func TestGeometry_Label(t *testing.T) {
	g := domain.DefaultGeometry()
	assert.Equal(t, "A1", g.Label(domain.Cell{File: 0, Rank: 0}))
	assert.Equal(t, "H3", g.Label(domain.Cell{File: 7, Rank: 2}))
	assert.Equal(t, "H8", g.Label(domain.Cell{File: 7, Rank: 7}))

	wide := domain.Geometry{Files: 30, Ranks: 12, BlockSize: 10}
	assert.Equal(t, "AA1", wide.Label(domain.Cell{File: 0, Rank: 0}))
	assert.Equal(t, "AZ12", wide.Label(domain.Cell{File: 25, Rank: 11}))
	assert.Equal(t, "BD5", wide.Label(domain.Cell{File: 29, Rank: 4}))
}

func TestGeometry_ParseLabel(t *testing.T) {
	g := domain.DefaultGeometry()

	c, err := g.ParseLabel("H3")
	require.NoError(t, err)
	assert.Equal(t, domain.Cell{File: 7, Rank: 2}, c)

	c, err = g.ParseLabel("b8")
	require.NoError(t, err)
	assert.Equal(t, domain.Cell{File: 1, Rank: 7}, c)

	invalid := []string{"", "3", "H", "H0", "I1", "A9", "A-1", "A1x", "?1", "A+1", "AAAAAAAAA1", "AA1", "AAAB3", "A01"}
	for _, label := range invalid {
		_, err := g.ParseLabel(label)
		assert.ErrorIs(t, err, domain.ErrInvalidLabel, "label %q", label)

		var le *domain.LabelError
		assert.True(t, errors.As(err, &le), "label %q should produce a LabelError", label)
	}
}

func TestGeometry_ParseLabelWidePadding(t *testing.T) {
	g := domain.Geometry{Files: 27, Ranks: 3, BlockSize: 10}
	require.Equal(t, 2, g.LabelWidth())

	c, err := g.ParseLabel("AB1")
	require.NoError(t, err)
	assert.Equal(t, domain.Cell{File: 1, Rank: 0}, c)

	c, err = g.ParseLabel("B1")
	require.NoError(t, err)
	assert.Equal(t, domain.Cell{File: 1, Rank: 0}, c)
	assert.Equal(t, "AB1", g.Label(c))

	c, err = g.ParseLabel("ba3")
	require.NoError(t, err)
	assert.Equal(t, domain.Cell{File: 26, Rank: 2}, c)

	for _, label := range []string{"AAB1", "AB01"} {
		_, err := g.ParseLabel(label)
		assert.ErrorIs(t, err, domain.ErrInvalidLabel, "label %q", label)
	}
}

func TestGeometry_LabelBijection(t *testing.T) {
	shapes := []domain.Geometry{
		{Files: 1, Ranks: 1, BlockSize: 10},
		{Files: 8, Ranks: 8, BlockSize: 10},
		{Files: 27, Ranks: 3, BlockSize: 10},
		{Files: 100, Ranks: 2, BlockSize: 10},
	}
	for _, g := range shapes {
		for f := 0; f < g.Files; f++ {
			for r := 0; r < g.Ranks; r++ {
				want := domain.Cell{File: f, Rank: r}
				got, err := g.ParseLabel(g.Label(want))
				require.NoError(t, err)
				require.Equal(t, want, got)
			}
		}
	}
}

func TestGeometry_Pixels(t *testing.T) {
	g := domain.Geometry{Files: 8, Ranks: 8, BlockSize: 60, BlockMargin: 2, Edge: 20}

	// Rank 0 renders at the bottom.
	a1 := g.Center(domain.Cell{File: 0, Rank: 0})
	assert.Equal(t, domain.Point{X: 50, Y: 20 + 7*62 + 30}, a1)

	h8 := g.Center(domain.Cell{File: 7, Rank: 7})
	assert.Equal(t, domain.Point{X: 20 + 7*62 + 30, Y: 50}, h8)

	for f := 0; f < g.Files; f++ {
		for r := 0; r < g.Ranks; r++ {
			want := domain.Cell{File: f, Rank: r}
			got, ok := g.CellAt(g.Center(want))
			require.True(t, ok)
			require.Equal(t, want, got)
		}
	}

	_, ok := g.CellAt(domain.Point{X: 5, Y: 5})
	assert.False(t, ok, "edge is not a cell")
	_, ok = g.CellAt(domain.Point{X: 20 + 61, Y: 100})
	assert.False(t, ok, "margin gap is not a cell")

	w, h := g.Size()
	assert.Equal(t, 40+8*60+7*2.0, w)
	assert.Equal(t, w, h)
	assert.Equal(t, domain.Point{X: w / 2, Y: h / 2}, g.BoardCenter())
}

func TestGeometry_Validate(t *testing.T) {
	assert.NoError(t, domain.DefaultGeometry().Validate())

	bad := []domain.Geometry{
		{Files: 0, Ranks: 8, BlockSize: 10},
		{Files: 8, Ranks: 0, BlockSize: 10},
		{Files: 8, Ranks: 8, BlockSize: 0},
		{Files: 8, Ranks: 8, BlockSize: 10, BlockMargin: -1},
		{Files: 8, Ranks: 8, BlockSize: 10, Edge: -1},
	}
	for _, g := range bad {
		assert.ErrorIs(t, g.Validate(), domain.ErrInvalidConfiguration, "%+v", g)
	}
}

func TestRotation_CounterTurn(t *testing.T) {
	tests := []struct {
		from  float64
		delta int
		want  int
	}{
		{0, 90, -90},
		{0, 30, 0},
		{0, 360, -360},
		{0, 450, -450},
		{0, -90, 90},
		{0, -360, 360},
		{0, 300, -270},
		{315, 90, -90},
		{90, 180, -180},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.CounterTurn(tt.from, tt.delta), "from=%v delta=%d", tt.from, tt.delta)
	}
}

func TestRotation_NormalizeAngle(t *testing.T) {
	assert.Equal(t, 0.0, domain.NormalizeAngle(360))
	assert.Equal(t, 270.0, domain.NormalizeAngle(-90))
	assert.Equal(t, 90.0, domain.NormalizeAngle(810))
	assert.False(t, math.Signbit(domain.NormalizeAngle(-720)))
	assert.Equal(t, 3, domain.Quadrant(-90))
	assert.Equal(t, 0, domain.Quadrant(44))
	assert.Equal(t, 1, domain.Quadrant(45))
}

func TestHints(t *testing.T) {
	to := domain.Cell{File: 3, Rank: 3}
	assert.True(t, domain.HintDiagonal.Prefers(domain.Cell{File: 0, Rank: 0}, to))
	assert.False(t, domain.HintDiagonal.Prefers(domain.Cell{File: 0, Rank: 1}, to))
	assert.True(t, domain.HintAligned.Prefers(domain.Cell{File: 3, Rank: 7}, to))
	assert.True(t, domain.HintAligned.Prefers(domain.Cell{File: 0, Rank: 3}, to))
	assert.False(t, domain.HintAligned.Prefers(domain.Cell{File: 0, Rank: 0}, to))
	assert.True(t, domain.HintForward.Prefers(domain.Cell{File: 3, Rank: 1}, to))
	assert.False(t, domain.HintForward.Prefers(domain.Cell{File: 2, Rank: 3}, to))

	assert.NoError(t, domain.ChessHints().Validate())
	assert.ErrorIs(t, domain.Hints{"N": "jumpy"}.Validate(), domain.ErrInvalidConfiguration)
}
