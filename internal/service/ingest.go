package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/ragstack/ragd/internal/ai"
	"github.com/ragstack/ragd/internal/chunker"
	"github.com/ragstack/ragd/internal/config"
	"github.com/ragstack/ragd/internal/filestore"
	"github.com/ragstack/ragd/internal/model"
	appErr "github.com/ragstack/ragd/internal/pkg/errors"
	"github.com/ragstack/ragd/internal/repo"
	"github.com/ragstack/ragd/internal/vectorstore"
)

type IngestRequest struct {
	Collection string
	Filename   string
	Text       string
	Metadata   map[string]interface{}
	Raw        []byte
}

type IngestResult struct {
	DocumentID string
	Collection string
	ChunkCount int
}

type IngestService struct {
	collections  []string
	chunkSize    int
	chunkOverlap int
	embedder     ai.IEmbedder
	store        vectorstore.Store
	docs         *repo.DocumentRepo
	archive      filestore.Store
}

func NewIngestService(cfg *config.Config, embedder ai.IEmbedder, store vectorstore.Store, docs *repo.DocumentRepo, archive filestore.Store) *IngestService {
	return &IngestService{
		collections:  cfg.Collections,
		chunkSize:    cfg.Chunking.ChunkSize,
		chunkOverlap: cfg.Chunking.ChunkOverlap,
		embedder:     embedder,
		store:        store,
		docs:         docs,
		archive:      archive,
	}
}

func (s *IngestService) knownCollection(name string) bool {
	for _, c := range s.collections {
		if c == name {
			return true
		}
	}
	return false
}

// Ingest chunks the document text, embeds every chunk and writes the batch
// into the collection's vector table. The original upload is archived when a
// file store is configured; archival failure does not fail the ingest.
func (s *IngestService) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	if !s.knownCollection(req.Collection) {
		return nil, fmt.Errorf("%w: %s", appErr.ErrInvalidCollection, req.Collection)
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: document has no extractable text", appErr.ErrInvalidInput)
	}
	logger := logutil.GetLogger(ctx).With(
		zap.String("collection", req.Collection),
		zap.String("filename", req.Filename),
	)

	chunks := chunker.Chunk(req.Text, s.chunkSize, s.chunkOverlap)
	points := make([]vectorstore.Point, 0, len(chunks))
	for i, chunk := range chunks {
		emb, err := s.embedder.Embed(ctx, chunk, ai.TaskTypeDocument)
		if err != nil {
			logger.Error("failed to embed chunk", zap.Int("chunk_index", i), zap.Error(err))
			return nil, err
		}
		payload := map[string]interface{}{
			"text":         chunk,
			"chunk_index":  i,
			"total_chunks": len(chunks),
		}
		for k, v := range req.Metadata {
			payload[k] = v
		}
		points = append(points, vectorstore.Point{
			ID:      uuid.NewString(),
			Vector:  emb,
			Payload: payload,
		})
	}
	if len(points) > 0 {
		if err := s.store.Upsert(ctx, req.Collection, points); err != nil {
			logger.Error("failed to upsert chunks", zap.Error(err))
			return nil, err
		}
	}

	docID := uuid.NewString()
	archiveKey := s.archiveRaw(ctx, logger, docID, req)
	if s.docs != nil {
		doc := &model.Document{
			ID:         docID,
			Collection: req.Collection,
			Filename:   req.Filename,
			ChunkCount: len(chunks),
			SizeBytes:  int64(len(req.Raw)),
			ArchiveKey: archiveKey,
			Ctime:      time.Now().UnixMilli(),
		}
		if err := s.docs.Create(ctx, doc); err != nil {
			logger.Error("failed to record document", zap.Error(err))
			return nil, err
		}
	}
	logger.Info("document ingested", zap.Int("chunk_count", len(chunks)))
	return &IngestResult{
		DocumentID: docID,
		Collection: req.Collection,
		ChunkCount: len(chunks),
	}, nil
}

func (s *IngestService) archiveRaw(ctx context.Context, logger *zap.Logger, docID string, req *IngestRequest) string {
	if s.archive == nil || len(req.Raw) == 0 {
		return ""
	}
	key := docID
	if ext := fileExt(req.Filename); ext != "" {
		key = docID + ext
	}
	r := &byteReader{Reader: bytes.NewReader(req.Raw)}
	if err := s.archive.Save(ctx, key, r, int64(len(req.Raw))); err != nil {
		logger.Warn("failed to archive original document", zap.Error(err))
		return ""
	}
	return key
}

func fileExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return ""
	}
	ext := strings.ToLower(name[idx:])
	// Keys stay flat, extensions with path separators are not trusted.
	if strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

type byteReader struct {
	*bytes.Reader
}

func (r *byteReader) Close() error {
	return nil
}
