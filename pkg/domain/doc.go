/*
Package domain contains the core domain models of the boardwalk board widget.

It defines the grid geometry (which doubles as the coordinate mapper between cells,
position labels and pixels), board matrices, tokens, movements, the rotation state value
and the frame diffs a renderer consumes. This package is kept pure and free of external
dependencies like I/O or rendering, following Hexagonal Architecture principles.

# Key Entities

  - Geometry: Fixed board shape; converts Cell <-> label ("H3") <-> pixel.
  - Matrix: File-major description of which labels occupy which cells.
  - Token: A placed piece instance with identity, label, cell and pixel position.
  - RotationState: Explicit value of the squeeze-turn-enlarge state machine.
  - FrameDiff: What changed between two scenes, emitted to the renderer.
*/
package domain
