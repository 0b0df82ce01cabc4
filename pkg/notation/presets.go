package notation

import (
	"sort"
	"strings"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// Preset names understood by Parse.
const (
	PresetStart = "start"
	PresetEmpty = "empty"
)

// StartPosition is the standard chess starting arrangement on an 8x8 grid.
const StartPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

// Presets returns the sorted list of preset names.
func Presets() []string {
	names := []string{PresetStart, PresetEmpty}
	sort.Strings(names)
	return names
}

// Parse decodes either a preset name (case-insensitive) or notation text.
// "empty" adapts to the codec's shape; "start" only decodes on an 8x8 grid.
func (c *Codec) Parse(input string) (domain.Matrix, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case PresetEmpty:
		return domain.NewMatrix(c.files, c.ranks), nil
	case PresetStart:
		return c.Decode(StartPosition)
	default:
		return c.Decode(input)
	}
}
