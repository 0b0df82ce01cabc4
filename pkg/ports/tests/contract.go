package tests

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/ports"
)

// PositionBookContractTest is a reusable test suite that verifies if an adapter complies with ports.PositionBook.
// setupData maps position names to the notation each must return.
func PositionBookContractTest(t *testing.T, book ports.PositionBook, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	// 1. Test Get (Success)
	t.Run("Get_Success", func(t *testing.T) {
		for name, expected := range setupData {
			pos, err := book.Get(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error getting position %s: %v", name, err)
			}
			if pos.Name != name {
				t.Errorf("name mismatch: got %q, want %q", pos.Name, name)
			}
			if pos.Notation != expected {
				t.Errorf("notation mismatch for %s. got %q, want %q", name, pos.Notation, expected)
			}
		}
	})

	// 2. Test Get (NotFound)
	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := book.Get(ctx, "non-existent-position")
		if !errors.Is(err, domain.ErrPositionNotFound) {
			t.Errorf("expected ErrPositionNotFound, got %v", err)
		}
	})

	// 3. Test List
	t.Run("List", func(t *testing.T) {
		names, err := book.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing positions: %v", err)
		}

		if len(names) != len(setupData) {
			t.Errorf("expected %d positions, got %d", len(setupData), len(names))
		}
		if !sort.StringsAreSorted(names) {
			t.Errorf("expected sorted names, got %v", names)
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}
		for name := range setupData {
			if !lookup[name] {
				t.Errorf("position %s missing from list", name)
			}
		}
	})
}
