package loam

// PositionMetadata is the frontmatter of a position document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type PositionMetadata struct {
	// Name overrides the name derived from the file name.
	Name string `json:"name" mapstructure:"name" yaml:"name,omitempty"`
	// Notation is the position text. When empty, the first non-blank body line is used.
	Notation string `json:"notation" mapstructure:"notation" yaml:"notation,omitempty"`
	// Tags are free-form labels shown by the CLI.
	Tags []string `json:"tags" mapstructure:"tags" yaml:"tags,omitempty"`
}
