package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/ragstack/ragd/internal/config"
	"github.com/ragstack/ragd/internal/handler"
	"github.com/ragstack/ragd/internal/middleware"
	"github.com/ragstack/ragd/internal/model"
	"github.com/ragstack/ragd/internal/service"
	"github.com/ragstack/ragd/internal/vectorstore"
)

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 2, 3}, nil
}

func (s *stubEmbedder) ModelName() string {
	return "stub-embed"
}

type stubChatter struct {
	lastMessages []model.Message
	answer       string
}

func (s *stubChatter) Chat(ctx context.Context, messages []model.Message, temperature float64) (string, error) {
	s.lastMessages = messages
	return s.answer, nil
}

func (s *stubChatter) ModelName() string {
	return "stub-chat"
}

type memStore struct {
	hits    map[string][]vectorstore.ScoredPoint
	upserts map[string][]vectorstore.Point
}

func newMemStore() *memStore {
	return &memStore{
		hits:    map[string][]vectorstore.ScoredPoint{},
		upserts: map[string][]vectorstore.Point{},
	}
}

func (m *memStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	return nil
}

func (m *memStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	m.upserts[collection] = append(m.upserts[collection], points...)
	return nil
}

func (m *memStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]vectorstore.ScoredPoint, error) {
	hits := m.hits[collection]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (m *memStore) Count(ctx context.Context, collection string) (int64, error) {
	return int64(len(m.upserts[collection])), nil
}

type testEnv struct {
	router   http.Handler
	store    *memStore
	embedder *stubEmbedder
	chatter  *stubChatter
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Port:        0,
		Collections: []string{"docs", "wiki"},
		Chunking:    config.ChunkingConfig{ChunkSize: 100, ChunkOverlap: 20},
		AI:          config.AIConfig{TimeoutSeconds: 5},
	}
	store := newMemStore()
	embedder := &stubEmbedder{}
	chatter := &stubChatter{answer: "stubbed answer"}

	ingestService := service.NewIngestService(cfg, embedder, store, nil, nil)
	queryService := service.NewQueryService(cfg, embedder, chatter, store)

	deps := handler.RouterDeps{
		Ingest:      handler.NewIngestHandler(ingestService),
		Query:       handler.NewQueryHandler(queryService),
		Collections: handler.NewCollectionHandler(cfg),
		Documents:   handler.NewDocumentHandler(nil, nil),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return &testEnv{router: engine, store: store, embedder: embedder, chatter: chatter}
}

func scoredHit(text string, score float32) vectorstore.ScoredPoint {
	return vectorstore.ScoredPoint{
		Score: score,
		Payload: map[string]interface{}{
			"text":         text,
			"chunk_index":  float64(0),
			"total_chunks": float64(1),
			"filename":     fmt.Sprintf("%s.txt", text),
		},
	}
}
