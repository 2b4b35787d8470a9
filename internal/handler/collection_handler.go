package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ragstack/ragd/internal/config"
	"github.com/ragstack/ragd/internal/pkg/response"
)

type CollectionHandler struct {
	collections []string
}

func NewCollectionHandler(cfg *config.Config) *CollectionHandler {
	return &CollectionHandler{collections: cfg.Collections}
}

// List returns the configured collections plus the reserved "global"
// pseudo-collection that bypasses retrieval.
func (h *CollectionHandler) List(c *gin.Context) {
	out := make([]string, 0, len(h.collections)+1)
	out = append(out, h.collections...)
	out = append(out, config.GlobalCollection)
	response.Success(c, gin.H{"collections": out})
}
