package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ragstack/ragd/internal/extract"
	appErr "github.com/ragstack/ragd/internal/pkg/errors"
	"github.com/ragstack/ragd/internal/pkg/response"
	"github.com/ragstack/ragd/internal/service"
)

const maxUploadSize = 32 << 20

type IngestHandler struct {
	svc *service.IngestService
}

type IngestResponse struct {
	Status          string `json:"status"`
	DocumentID      string `json:"document_id"`
	Collection      string `json:"collection"`
	ChunksProcessed int    `json:"chunks_processed"`
}

func NewIngestHandler(svc *service.IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

// Ingest accepts a multipart form with either an uploaded file or an inline
// text field. Uploaded files go through format-aware text extraction first.
func (h *IngestHandler) Ingest(c *gin.Context) {
	collection := strings.TrimSpace(c.PostForm("collection"))
	if collection == "" {
		handleError(c, fmt.Errorf("%w: collection is required", appErr.ErrInvalidInput))
		return
	}
	var metadata map[string]interface{}
	if raw := c.PostForm("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			handleError(c, fmt.Errorf("%w: metadata must be a JSON object", appErr.ErrInvalidInput))
			return
		}
	}

	var (
		text     string
		filename string
		raw      []byte
	)
	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid_file", "failed to read file")
			return
		}
		if len(data) > maxUploadSize {
			response.Error(c, http.StatusBadRequest, "invalid_file", "file too large")
			return
		}
		filename = filepath.Base(header.Filename)
		raw = data
		text, err = extract.Text(filename, data)
		if err != nil {
			handleError(c, fmt.Errorf("%w: failed to extract text: %v", appErr.ErrInvalidInput, err))
			return
		}
	} else {
		text = c.PostForm("text")
		filename = strings.TrimSpace(c.PostForm("filename"))
		if filename == "" {
			filename = "inline.txt"
		}
		raw = []byte(text)
	}

	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	if _, ok := metadata["filename"]; !ok {
		metadata["filename"] = filename
	}

	res, err := h.svc.Ingest(c.Request.Context(), &service.IngestRequest{
		Collection: collection,
		Filename:   filename,
		Text:       text,
		Metadata:   metadata,
		Raw:        raw,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, IngestResponse{
		Status:          "success",
		DocumentID:      res.DocumentID,
		Collection:      res.Collection,
		ChunksProcessed: res.ChunkCount,
	})
}
