package loam

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/boardwalk/internal/testutils"
	"github.com/aretw0/boardwalk/pkg/ports"
	"github.com/aretw0/boardwalk/pkg/ports/tests"
)

func TestBook_Contract(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)

	testutils.WriteFiles(t, dir, map[string]string{
		"kings.md": `---
notation: 4k3/8/8/8/8/8/8/4K3
tags: [endgame]
---
Bare kings.`,
		"scholars.md": `---
name: scholars-mate
---
r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR
White mates on f7.`,
		"italian.json": `{
  "notation": "r1bqk1nr/pppp1ppp/2n5/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R"
}`,
	})

	book := New(repo)
	tests.PositionBookContractTest(t, book, map[string]string{
		"kings":            "4k3/8/8/8/8/8/8/4K3",
		"scholars-mate":    "r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR",
		"italian":          "r1bqk1nr/pppp1ppp/2n5/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R",
	})

	pos, err := book.Get(context.Background(), "scholars-mate")
	require.NoError(t, err)
	assert.Equal(t, "White mates on f7.", pos.Description)
}

func TestBook_DetectsCollisions(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, map[string]string{
		"foo.md":   "---\nnotation: 8/8/8/8/8/8/8/8\n---\n",
		"foo.json": `{"notation": "8/8/8/8/8/8/8/K7"}`,
	})

	_, err := New(repo).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestBook_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, repo := testutils.SetupTestRepo(t)
	book := New(repo)

	require.NoError(t, book.Save(ctx, ports.Position{
		Name:        "corner",
		Notation:    "8/8/8/8/8/8/8/[K Q]7",
		Description: "Two tokens on one square.",
	}))

	pos, err := book.Get(ctx, "corner")
	require.NoError(t, err)
	assert.Equal(t, "8/8/8/8/8/8/8/[K Q]7", pos.Notation)
	assert.Equal(t, "Two tokens on one square.", pos.Description)

	assert.Error(t, book.Save(ctx, ports.Position{Notation: "8/8/8/8/8/8/8/8"}))
}
