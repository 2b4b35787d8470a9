package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/ragstack/ragd/internal/model"
	"github.com/ragstack/ragd/internal/pkg/dbutil"
	appErr "github.com/ragstack/ragd/internal/pkg/errors"
)

var documentFields = []string{"id", "collection", "filename", "chunk_count", "size_bytes", "archive_key", "ctime"}

// DocumentRepo is the ingestion registry: one row per ingest call.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":          doc.ID,
		"collection":  doc.Collection,
		"filename":    doc.Filename,
		"chunk_count": doc.ChunkCount,
		"size_bytes":  doc.SizeBytes,
		"archive_key": doc.ArchiveKey,
		"ctime":       doc.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DocumentRepo) Get(ctx context.Context, id string) (*model.Document, error) {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var doc model.Document
	if err := row.Scan(&doc.ID, &doc.Collection, &doc.Filename, &doc.ChunkCount, &doc.SizeBytes, &doc.ArchiveKey, &doc.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) List(ctx context.Context, collection string, limit int) ([]model.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	where := map[string]interface{}{
		"_orderby": "ctime desc",
		"_limit":   []uint{uint(limit)},
	}
	if collection != "" {
		where["collection"] = collection
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		if err := rows.Scan(&doc.ID, &doc.Collection, &doc.Filename, &doc.ChunkCount, &doc.SizeBytes, &doc.ArchiveKey, &doc.Ctime); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
