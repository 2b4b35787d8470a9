package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type queryResult struct {
	Data struct {
		Answer  string `json:"answer"`
		Sources []struct {
			Text       string                 `json:"text"`
			Score      float32                `json:"score"`
			Collection string                 `json:"collection"`
			Metadata   map[string]interface{} `json:"metadata"`
		} `json:"sources"`
	} `json:"data"`
}

func postQuery(t *testing.T, env *testEnv, payload string) (*httptest.ResponseRecorder, queryResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	var result queryResult
	if resp.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	}
	return resp, result
}

func TestQueryWithSources(t *testing.T) {
	env := setupRouter(t)
	env.store.hits["docs"] = append(env.store.hits["docs"], scoredHit("relevant chunk", 0.9))

	resp, result := postQuery(t, env, `{"query":"what is this","collection":"docs","top_k":3}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "stubbed answer", result.Data.Answer)
	require.Len(t, result.Data.Sources, 1)
	require.Equal(t, "relevant chunk", result.Data.Sources[0].Text)
	require.Equal(t, "docs", result.Data.Sources[0].Collection)
	require.NotContains(t, result.Data.Sources[0].Metadata, "text")
	require.Contains(t, env.chatter.lastMessages[0].Content, "[docs] relevant chunk")
}

func TestQueryGlobalOmitsSources(t *testing.T) {
	env := setupRouter(t)

	resp, result := postQuery(t, env, `{"query":"who wrote hamlet","collection":"global"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "stubbed answer", result.Data.Answer)
	require.Empty(t, result.Data.Sources)

	var raw map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	_, hasSources := raw["data"]["sources"]
	require.False(t, hasSources)
	require.Equal(t, 0, env.embedder.calls)
}

func TestQueryNoResultsMessage(t *testing.T) {
	env := setupRouter(t)

	resp, result := postQuery(t, env, `{"query":"anything"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "No relevant information found in the collections. Try querying 'global' knowledge.", result.Data.Answer)
	require.Empty(t, result.Data.Sources)
	require.Nil(t, env.chatter.lastMessages)
}

func TestQueryRequiresQuery(t *testing.T) {
	env := setupRouter(t)

	resp, _ := postQuery(t, env, `{"query":"  "}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestQueryRejectsBadJSON(t *testing.T) {
	env := setupRouter(t)

	resp, _ := postQuery(t, env, `{"query":`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListCollections(t *testing.T) {
	env := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var result struct {
		Data struct {
			Collections []string `json:"collections"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, []string{"docs", "wiki", "global"}, result.Data.Collections)
}
