package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func multipartForm(t *testing.T, fields map[string]string, filename string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestIngestInlineText(t *testing.T) {
	env := setupRouter(t)

	body, contentType := multipartForm(t, map[string]string{
		"collection": "docs",
		"text":       "inline content for ingestion",
		"metadata":   `{"author":"alice"}`,
	}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var result struct {
		Data struct {
			Status          string `json:"status"`
			DocumentID      string `json:"document_id"`
			Collection      string `json:"collection"`
			ChunksProcessed int    `json:"chunks_processed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "success", result.Data.Status)
	require.Equal(t, "docs", result.Data.Collection)
	require.Equal(t, 1, result.Data.ChunksProcessed)
	require.NotEmpty(t, result.Data.DocumentID)

	points := env.store.upserts["docs"]
	require.Len(t, points, 1)
	require.Equal(t, "inline content for ingestion", points[0].Payload["text"])
	require.Equal(t, "alice", points[0].Payload["author"])
	require.Equal(t, "inline.txt", points[0].Payload["filename"])
}

func TestIngestUploadedFile(t *testing.T) {
	env := setupRouter(t)

	body, contentType := multipartForm(t, map[string]string{
		"collection": "wiki",
	}, "notes.txt", []byte("uploaded file content"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	points := env.store.upserts["wiki"]
	require.Len(t, points, 1)
	require.Equal(t, "uploaded file content", points[0].Payload["text"])
	require.Equal(t, "notes.txt", points[0].Payload["filename"])
}

func TestIngestUnknownCollection(t *testing.T) {
	env := setupRouter(t)

	body, contentType := multipartForm(t, map[string]string{
		"collection": "nope",
		"text":       "content",
	}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var result struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "invalid_collection", result.Error.Code)
	require.Empty(t, env.store.upserts)
}

func TestIngestRequiresContent(t *testing.T) {
	env := setupRouter(t)

	body, contentType := multipartForm(t, map[string]string{
		"collection": "docs",
	}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestIngestRejectsBadMetadata(t *testing.T) {
	env := setupRouter(t)

	body, contentType := multipartForm(t, map[string]string{
		"collection": "docs",
		"text":       "content",
		"metadata":   "not-json",
	}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
