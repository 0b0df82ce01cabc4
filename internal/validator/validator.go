package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/boardwalk/pkg/notation"
	"github.com/aretw0/boardwalk/pkg/ports"
)

// ValidateBook checks that every stored position loads and decodes with codec,
// and that no stored name shadows a built-in preset.
// All problems are reported together.
func ValidateBook(ctx context.Context, book ports.PositionBook, codec *notation.Codec) error {
	names, err := book.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list positions: %w", err)
	}

	presets := make(map[string]bool)
	for _, p := range notation.Presets() {
		presets[p] = true
	}

	var errors []string
	for _, name := range names {
		if presets[strings.ToLower(name)] {
			errors = append(errors, fmt.Sprintf("'%s' shadows a built-in preset", name))
		}

		p, err := book.Get(ctx, name)
		if err != nil {
			errors = append(errors, fmt.Sprintf("load error: '%s': %v", name, err))
			continue
		}
		if _, err := codec.Decode(p.Notation); err != nil {
			errors = append(errors, fmt.Sprintf("'%s': %v", name, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}
