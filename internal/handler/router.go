package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Ingest      *IngestHandler
	Query       *QueryHandler
	Collections *CollectionHandler
	Documents   *DocumentHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/ingest", deps.Ingest.Ingest)
	api.POST("/query", deps.Query.Query)
	api.GET("/collections", deps.Collections.List)
	api.GET("/documents", deps.Documents.List)
	api.GET("/documents/:id/raw", deps.Documents.Raw)
}
