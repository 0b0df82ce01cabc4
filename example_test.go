package boardwalk_test

import (
	"context"
	"fmt"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/pkg/adapters/memory"
)

// ExampleNew_memory demonstrates driving a board with an in-memory asset loader.
func ExampleNew_memory() {
	ctx := context.Background()
	board, err := boardwalk.New(
		boardwalk.WithID("example"),
		boardwalk.WithAssetLoader(memory.NewLoader(memory.ChessGlyphs)),
	)
	if err != nil {
		panic(err)
	}

	if _, err := board.ResolvePosition(ctx, "start"); err != nil {
		panic(err)
	}
	if err := board.AwaitLoads(ctx); err != nil {
		panic(err)
	}

	if _, err := board.Move(ctx, "E2", "E4"); err != nil {
		panic(err)
	}
	if _, err := board.Move(ctx, "E7", "E5"); err != nil {
		panic(err)
	}
	for !board.Idle() {
		_ = board.Tick(ctx, 16)
	}

	text, _ := board.Notation()
	fmt.Println(text)
	// Output:
	// rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR
}

// ExampleBoard_ResolvePosition shows how a position change reuses tokens.
func ExampleBoard_ResolvePosition() {
	ctx := context.Background()
	board, _ := boardwalk.New(boardwalk.WithAnimation(false))

	_, _ = board.ResolvePosition(ctx, "4k3/8/8/8/8/8/8/4K3")
	_ = board.AwaitLoads(ctx)

	res, _ := board.ResolvePosition(ctx, "3k4/8/8/8/8/8/8/4K3")
	fmt.Printf("stay=%d moves=%d creates=%d discards=%d\n",
		len(res.Plan.Stay), len(res.Plan.Moves), len(res.Plan.Creates), len(res.Plan.Discards))
	g := board.Geometry()
	mv := res.Plan.Moves[0]
	fmt.Println(mv.Label, g.Label(mv.From), "->", g.Label(mv.To))
	// Output:
	// stay=1 moves=1 creates=0 discards=0
	// k E8 -> D8
}
