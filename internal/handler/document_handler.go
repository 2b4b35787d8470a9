package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ragstack/ragd/internal/filestore"
	"github.com/ragstack/ragd/internal/pkg/response"
	"github.com/ragstack/ragd/internal/repo"
)

const defaultListLimit = 100

type DocumentHandler struct {
	docs    *repo.DocumentRepo
	archive filestore.Store
}

func NewDocumentHandler(docs *repo.DocumentRepo, archive filestore.Store) *DocumentHandler {
	return &DocumentHandler{docs: docs, archive: archive}
}

func (h *DocumentHandler) List(c *gin.Context) {
	collection := c.Query("collection")
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}
	docs, err := h.docs.List(c.Request.Context(), collection, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"documents": docs})
}

// Raw streams the archived original upload. Only the local store can serve
// bytes back; anything else is a 404.
func (h *DocumentHandler) Raw(c *gin.Context) {
	doc, err := h.docs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if doc.ArchiveKey == "" || h.archive == nil || h.archive.Type() != "local" {
		c.Status(http.StatusNotFound)
		return
	}
	file, err := h.archive.Open(c.Request.Context(), doc.ArchiveKey)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	contentType := mime.TypeByExtension(filepath.Ext(doc.ArchiveKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	_, _ = file.Seek(0, 0)
	_, _ = io.Copy(c.Writer, file)
}
