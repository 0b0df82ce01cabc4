/*
Package ports defines the driven ports (interfaces) for the boardwalk board.

These interfaces decouple the board core from its collaborators, allowing the same
board to render into any scene graph, load token images from any source and read
named positions from any catalogue.

# Key Interfaces

  - Renderer: Consumes frame diffs emitted after every tick and mutation.
  - AssetLoader: Resolves a token label to its visual resource (memory, files, Redis).
  - PositionBook: Read-only catalogue of named positions (memory, Loam).
*/
package ports
