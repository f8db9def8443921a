// Package purge removes every object under one bucket folder.
package purge

import (
	"context"
	"fmt"

	"github.com/npratama/bucketops/internal/storage"
	"github.com/npratama/bucketops/pkg/logger"
)

// Result is the outcome of one object deletion.
type Result struct {
	Key string
	Err error
}

// Summary accumulates per-object outcomes for one run.
type Summary struct {
	Deleted int
	Failed  int
	Results []Result
}

// DeleteFolder lists all objects under folder and deletes each one
// individually. A folder with no objects returns an empty summary and nil
// error. One failed delete does not stop attempts on the rest.
func DeleteFolder(ctx context.Context, store storage.ObjectStorage, folder string) (*Summary, error) {
	objects, err := store.ListObjects(ctx, storage.FolderPrefix(folder))
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket folder %s: %w", folder, err)
	}

	sum := &Summary{Results: make([]Result, 0, len(objects))}
	if len(objects) == 0 {
		logger.Log.Info().Str("folder", folder).Msg("nothing to delete")
		return sum, nil
	}

	for _, obj := range objects {
		err := store.DeleteObject(ctx, obj.Key)
		sum.Results = append(sum.Results, Result{Key: obj.Key, Err: err})
		if err != nil {
			logger.Log.Error().Err(err).Str("key", obj.Key).Msg("delete failed")
			sum.Failed++
			continue
		}
		sum.Deleted++
	}

	logger.Log.Info().
		Str("folder", folder).
		Int("deleted", sum.Deleted).
		Int("failed", sum.Failed).
		Msg("folder purge finished")
	return sum, nil
}
