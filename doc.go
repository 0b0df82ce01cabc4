/*
Package boardwalk is a positional board engine: it keeps a grid of labelled tokens, transitions between positions with minimal token churn, and animates moves and rotations on a deterministic tick clock.

It separates the board model (Logic) from asset loading and drawing (Adapters), so the same board can back a terminal viewer, an HTTP API or an AI agent tool server.

# Concept

A position is described in a compact notation: ranks separated by '/', from the top rank down, digits for runs of empty cells, single characters for one token, and brackets for a cell holding several tokens ("[K Q]").

When a new position is requested, boardwalk computes an assignment that keeps every token already in place, moves the nearest matching token where one exists, creates the rest, and discards the leftovers. Moves are interpolated geometrically on each Tick until they settle.

# Key Features

  - Deterministic: given the same position and the same tick sequence, the scene is always reproducible.
  - Token Reuse: a new position only creates the tokens no existing token can serve.
  - Hints: per-label tie-break rules (e.g. chess bishops keep their square colour).
  - Rotation: a squeeze, turn and enlarge cycle that keeps every token upright.
  - Hexagonal Architecture: asset loaders, position books and renderers are ports.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/boardwalk"
		"github.com/aretw0/boardwalk/pkg/adapters/memory"
	)

	func main() {
		ctx := context.Background()
		board, err := boardwalk.New(boardwalk.WithAssetLoader(memory.NewLoader(memory.ChessGlyphs)))
		if err != nil {
			log.Fatal(err)
		}

		if _, err := board.ResolvePosition(ctx, "start"); err != nil {
			log.Fatal(err)
		}
		_ = board.AwaitLoads(ctx)

		if _, err := board.Move(ctx, "E2", "E4"); err != nil {
			log.Fatal(err)
		}
		for !board.Idle() {
			_ = board.Tick(ctx, 16)
		}

		fmt.Println(board.Notation())
	}

For a goroutine-safe host that ticks on a wall clock, see pkg/session.
*/
package boardwalk
