package model

// Document is one row of the ingestion registry: a single ingest call,
// regardless of how many chunks it produced.
type Document struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	SizeBytes  int64  `json:"size_bytes"`
	ArchiveKey string `json:"archive_key"`
	Ctime      int64  `json:"ctime"`
}
