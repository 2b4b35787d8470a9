package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/ragstack/ragd/internal/ai"
	"github.com/ragstack/ragd/internal/config"
	"github.com/ragstack/ragd/internal/model"
	appErr "github.com/ragstack/ragd/internal/pkg/errors"
	"github.com/ragstack/ragd/internal/vectorstore"
)

const (
	DefaultTopK = 5

	contextAnswerPrompt = "You are a helpful assistant that answers questions based on the context provided.\n\nContext:\n%s"
	globalAnswerPrompt  = "You are a helpful assistant. Answer the following question using your general knowledge."
	noResultsAnswer     = "No relevant information found in the collections. Try querying 'global' knowledge."

	answerTemperature = 0.7
)

type QueryResult struct {
	Answer  string
	Sources []*model.SearchResult
	// HasSources reports whether retrieval produced context. The answer for
	// a global query or an empty retrieval carries no sources at all.
	HasSources bool
}

type QueryService struct {
	collections []string
	embedder    ai.IEmbedder
	chatter     ai.IChatter
	store       vectorstore.Store
	timeout     time.Duration
}

func NewQueryService(cfg *config.Config, embedder ai.IEmbedder, chatter ai.IChatter, store vectorstore.Store) *QueryService {
	return &QueryService{
		collections: cfg.Collections,
		embedder:    embedder,
		chatter:     chatter,
		store:       store,
		timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	}
}

func (s *QueryService) knownCollection(name string) bool {
	for _, c := range s.collections {
		if c == name {
			return true
		}
	}
	return false
}

// Answer retrieves context for the query and asks the chat model for an
// answer. A collection of "global" bypasses retrieval entirely; a named
// collection restricts the search; anything else fans out across every
// configured collection.
func (s *QueryService) Answer(ctx context.Context, query, collection string, topK int) (*QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", appErr.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	logger := logutil.GetLogger(ctx).With(zap.String("collection", collection), zap.Int("top_k", topK))

	var sources []*model.SearchResult
	if collection != config.GlobalCollection {
		var err error
		sources, err = s.retrieve(ctx, logger, query, collection, topK)
		if err != nil {
			return nil, err
		}
		if len(sources) == 0 {
			logger.Info("no context retrieved")
			return &QueryResult{Answer: noResultsAnswer}, nil
		}
	}

	answer, err := s.generate(ctx, query, sources)
	if err != nil {
		logger.Error("chat completion failed", zap.Error(err))
		return nil, err
	}
	return &QueryResult{
		Answer:     answer,
		Sources:    sources,
		HasSources: len(sources) > 0,
	}, nil
}

func (s *QueryService) retrieve(ctx context.Context, logger *zap.Logger, query, collection string, topK int) ([]*model.SearchResult, error) {
	emb, err := s.embedder.Embed(ctx, query, ai.TaskTypeQuery)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return nil, err
	}

	var results []*model.SearchResult
	if s.knownCollection(collection) {
		hits, err := s.store.Search(ctx, collection, emb, topK)
		if err != nil {
			logger.Error("search failed", zap.Error(err))
			return nil, err
		}
		results = appendHits(results, collection, hits)
	} else {
		// Fan out over every collection. A single failing collection only
		// narrows the result set.
		perCollection := topK / len(s.collections)
		if perCollection < 1 {
			perCollection = 1
		}
		for _, c := range s.collections {
			hits, err := s.store.Search(ctx, c, emb, perCollection)
			if err != nil {
				logger.Warn("search failed, skipping collection", zap.String("search_collection", c), zap.Error(err))
				continue
			}
			results = appendHits(results, c, hits)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func appendHits(results []*model.SearchResult, collection string, hits []vectorstore.ScoredPoint) []*model.SearchResult {
	for _, hit := range hits {
		text, _ := hit.Payload["text"].(string)
		metadata := make(map[string]interface{}, len(hit.Payload))
		for k, v := range hit.Payload {
			if k == "text" {
				continue
			}
			metadata[k] = v
		}
		results = append(results, &model.SearchResult{
			Text:       text,
			Score:      hit.Score,
			Collection: collection,
			Metadata:   metadata,
		})
	}
	return results
}

func (s *QueryService) generate(ctx context.Context, query string, sources []*model.SearchResult) (string, error) {
	system := globalAnswerPrompt
	if len(sources) > 0 {
		parts := make([]string, 0, len(sources))
		for _, src := range sources {
			parts = append(parts, fmt.Sprintf("[%s] %s", src.Collection, src.Text))
		}
		system = fmt.Sprintf(contextAnswerPrompt, strings.Join(parts, "\n\n"))
	}
	messages := []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: query},
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.chatter.Chat(ctx, messages, answerTemperature)
}
