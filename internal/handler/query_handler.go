package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ragstack/ragd/internal/model"
	appErr "github.com/ragstack/ragd/internal/pkg/errors"
	"github.com/ragstack/ragd/internal/pkg/response"
	"github.com/ragstack/ragd/internal/service"
)

type QueryHandler struct {
	svc *service.QueryService
}

type QueryRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
	TopK       int    `json:"top_k"`
}

type QueryResponse struct {
	Answer  string                `json:"answer"`
	Sources []*model.SearchResult `json:"sources,omitempty"`
}

func NewQueryHandler(svc *service.QueryService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %v", appErr.ErrInvalidInput, err))
		return
	}
	res, err := h.svc.Answer(c.Request.Context(), req.Query, req.Collection, req.TopK)
	if err != nil {
		handleError(c, err)
		return
	}
	out := QueryResponse{Answer: res.Answer}
	if res.HasSources {
		out.Sources = res.Sources
	}
	response.Success(c, out)
}
