package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/ragstack/ragd/internal/ai"
	appErr "github.com/ragstack/ragd/internal/pkg/errors"
	"github.com/ragstack/ragd/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrInvalidCollection):
		response.Error(c, http.StatusBadRequest, "invalid_collection", err.Error())
	case errors.Is(err, appErr.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, ai.ErrUnavailable), errors.Is(err, appErr.ErrUpstream):
		response.Error(c, http.StatusInternalServerError, "upstream", "upstream provider failed")
	default:
		response.Error(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
