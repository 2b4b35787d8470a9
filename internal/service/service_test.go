package service

import (
	"context"
	"fmt"

	"github.com/ragstack/ragd/internal/model"
	"github.com/ragstack/ragd/internal/vectorstore"
)

type embedCall struct {
	text     string
	taskType string
}

type fakeEmbedder struct {
	calls []embedCall
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	f.calls = append(f.calls, embedCall{text: text, taskType: taskType})
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) ModelName() string {
	return "fake-embed"
}

type chatCall struct {
	messages    []model.Message
	temperature float64
}

type fakeChatter struct {
	calls  []chatCall
	answer string
	err    error
}

func (f *fakeChatter) Chat(ctx context.Context, messages []model.Message, temperature float64) (string, error) {
	f.calls = append(f.calls, chatCall{messages: messages, temperature: temperature})
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeChatter) ModelName() string {
	return "fake-chat"
}

type searchCall struct {
	collection string
	limit      int
}

type fakeStore struct {
	hits      map[string][]vectorstore.ScoredPoint
	searchErr map[string]error
	upsertErr error
	searches  []searchCall
	upserts   map[string][]vectorstore.Point
	ensured   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hits:      map[string][]vectorstore.ScoredPoint{},
		searchErr: map[string]error{},
		upserts:   map[string][]vectorstore.Point{},
	}
}

func (f *fakeStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	f.ensured = append(f.ensured, collection)
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts[collection] = append(f.upserts[collection], points...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]vectorstore.ScoredPoint, error) {
	f.searches = append(f.searches, searchCall{collection: collection, limit: limit})
	if err := f.searchErr[collection]; err != nil {
		return nil, err
	}
	hits := f.hits[collection]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *fakeStore) Count(ctx context.Context, collection string) (int64, error) {
	return int64(len(f.upserts[collection])), nil
}

func scored(text string, score float32) vectorstore.ScoredPoint {
	return vectorstore.ScoredPoint{
		Score: score,
		Payload: map[string]interface{}{
			"text":         text,
			"chunk_index":  float64(0),
			"total_chunks": float64(1),
		},
	}
}

var errBoom = fmt.Errorf("boom")
