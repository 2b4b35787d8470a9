package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/ragstack/ragd/internal/vectorstore"
)

// CollectionReconcileJob re-runs idempotent collection creation so a vector
// table dropped or missed at startup comes back without a restart, and logs
// per-collection point counts.
type CollectionReconcileJob struct {
	store       vectorstore.Store
	collections []string
	dimension   int
}

func NewCollectionReconcileJob(store vectorstore.Store, collections []string, dimension int) *CollectionReconcileJob {
	return &CollectionReconcileJob{
		store:       store,
		collections: collections,
		dimension:   dimension,
	}
}

func (j *CollectionReconcileJob) Name() string {
	return "collection_reconcile"
}

func (j *CollectionReconcileJob) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	var firstErr error
	for _, collection := range j.collections {
		if err := j.store.EnsureCollection(ctx, collection, j.dimension); err != nil {
			logger.Error("failed to ensure collection", zap.String("collection", collection), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		count, err := j.store.Count(ctx, collection)
		if err != nil {
			logger.Warn("failed to count collection", zap.String("collection", collection), zap.Error(err))
			continue
		}
		logger.Info("collection ready", zap.String("collection", collection), zap.Int64("points", count))
	}
	return firstErr
}
