// Package reconcile diffs the id column of a CSV inventory against the
// objects present in a bucket folder and uploads the gap.
package reconcile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npratama/bucketops/internal/storage"
	"github.com/npratama/bucketops/pkg/logger"
)

// ErrMissingIDColumn indicates the CSV header has no "id" column.
var ErrMissingIDColumn = errors.New("csv header has no id column")

// Listing is an indexed view of one bucket folder. Object names are the
// keys relative to the folder prefix. Zero-byte objects are tracked
// separately: they exist in the bucket but were never uploaded successfully,
// so membership checks treat them as absent.
type Listing struct {
	names map[string]struct{}
	zero  map[string]struct{}
}

// FetchListing lists every object under folder and indexes it for O(1)
// membership checks. A folder that does not exist yields an empty listing.
func FetchListing(ctx context.Context, store storage.ObjectStorage, folder string) (*Listing, error) {
	prefix := storage.FolderPrefix(folder)

	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket folder %s: %w", folder, err)
	}

	l := &Listing{
		names: make(map[string]struct{}, len(objects)),
		zero:  make(map[string]struct{}),
	}
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Key, prefix)
		if name == "" {
			continue
		}
		l.names[name] = struct{}{}
		if obj.Size == 0 {
			l.zero[name] = struct{}{}
		}
	}

	logger.Log.Info().Int("objects", len(l.names)).Str("folder", folder).Msg("fetched bucket listing")
	return l, nil
}

// Contains reports whether name is present in the folder with non-zero size.
// Exact, case-sensitive match.
func (l *Listing) Contains(name string) bool {
	if _, ok := l.names[name]; !ok {
		return false
	}
	_, zero := l.zero[name]
	return !zero
}

// Len returns the number of objects in the listing.
func (l *Listing) Len() int {
	return len(l.names)
}

// MissingFromCSV reads the id column of the CSV at csvPath and returns the
// ids whose "<id>.<ext>" object is absent from the listing, in CSV order
// with duplicates removed. Blank id cells are skipped.
func MissingFromCSV(csvPath, ext string, listing *Listing) ([]string, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv %s: %w", csvPath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: %w", csvPath, ErrMissingIDColumn)
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	idx := idColumnIndex(header)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", csvPath, ErrMissingIDColumn)
	}

	var missing []string
	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if idx >= len(record) {
			continue
		}

		id := strings.TrimSpace(record[idx])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if !listing.Contains(id + "." + ext) {
			missing = append(missing, id)
		}
	}

	return missing, nil
}

// Summary counts per-file upload outcomes for one run.
type Summary struct {
	Uploaded int
	Failed   int
}

// UploadMissing reads <dir>/<id>.<ext> for each missing id and uploads it to
// <folder>/<id>.<ext>. A file absent locally or rejected remotely is logged
// and counted failed; the remaining uploads still run.
func UploadMissing(ctx context.Context, store storage.ObjectStorage, missing []string, dir, folder, ext string) Summary {
	var sum Summary
	for _, id := range missing {
		name := id + "." + ext
		localPath := filepath.Join(dir, name)

		data, err := os.ReadFile(localPath)
		if err != nil {
			logger.Log.Warn().Err(err).Str("file", name).Str("dir", dir).Msg("failed to read local file")
			sum.Failed++
			continue
		}

		key := storage.FolderPrefix(folder) + name
		if err := store.UploadObject(ctx, key, data); err != nil {
			logger.Log.Error().Err(err).Str("file", name).Msg("upload failed")
			sum.Failed++
			continue
		}

		logger.Log.Info().Str("file", name).Msg("uploaded")
		sum.Uploaded++
	}
	return sum
}

// idColumnIndex finds the "id" column, tolerating a UTF-8 BOM on the first
// header cell.
func idColumnIndex(header []string) int {
	for i, h := range header {
		if strings.TrimPrefix(h, "\ufeff") == "id" {
			return i
		}
	}
	return -1
}
