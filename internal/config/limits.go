package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	// Same cap as folder names for consistency.
	MaxFileNameLength = 255

	// MaxPathLength is the maximum length for full virtual paths. Longer
	// paths indicate overly deep hierarchies.
	MaxPathLength = 500

	// FileChunkSize bounds identifier lists in bulk metadata queries and
	// bulk blob removals.
	FileChunkSize = 1000

	// EmbeddingDimensions is the fixed dimension of file embedding vectors,
	// matching the embedding model output.
	EmbeddingDimensions = 1536

	// RetrievalLimit is how many nearest-neighbour files feed the answer
	// generator.
	RetrievalLimit = 5
)
