// Package zoomsource provides the data sources charts fetch detailed data
// from when zooming in.
package zoomsource

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/observability"

	// Imported for the side-effect of registering blob.OpenBucket() providers.
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// objectExtensions are tried in order when looking up a label's object.
var objectExtensions = []string{".json", ".yaml", ".yml"}

// Blob reads detailed charts from a bucket.
//
// The chart for a label is stored in the object "<value>.json" (or .yaml),
// where value is the label's value, for example "1554076800000.json".
type Blob struct {
	bucket *blob.Bucket
	logger *observability.CoreLogger
}

// OpenBlob opens the bucket at a gocloud URL such as
// "s3://bucket?prefix=zoom/" or "file:///var/charts".
func OpenBlob(
	ctx context.Context,
	bucketURL string,
	logger *observability.CoreLogger,
) (*Blob, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("zoomsource: failed to open bucket: %v", err)
	}
	return NewBlob(bucket, logger), nil
}

func NewBlob(bucket *blob.Bucket, logger *observability.CoreLogger) *Blob {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	return &Blob{bucket: bucket, logger: logger}
}

// Fetch implements zoomer.DataSource.
func (b *Blob) Fetch(
	ctx context.Context,
	labelValue float64,
) (*chartdata.RawChart, error) {
	name := ObjectName(labelValue)

	for _, ext := range objectExtensions {
		key := name + ext

		data, err := b.read(ctx, key)
		switch {
		case gcerrors.Code(err) == gcerrors.NotFound:
			continue
		case err != nil:
			return nil, fmt.Errorf("zoomsource: reading %q: %w", key, err)
		}

		b.logger.Debug("zoomsource: read zoom data", "key", key, "bytes", len(data))
		if ext == ".json" {
			return chartdata.ParseJSON(data)
		}
		return chartdata.ParseYAML(data)
	}

	return nil, nil
}

// read reads an object, retrying errors that may be transient.
func (b *Blob) read(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := retry.Do(
		func() error {
			var err error
			data, err = b.bucket.ReadAll(ctx, key)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			b.logger.Debug("zoomsource: retrying read", "key", key, "attempt", n+1, "error", err)
		}),
	)
	return data, err
}

func isTransient(err error) bool {
	switch gcerrors.Code(err) {
	case gcerrors.NotFound,
		gcerrors.InvalidArgument,
		gcerrors.PermissionDenied,
		gcerrors.Unimplemented,
		gcerrors.Canceled:
		return false
	}
	return true
}

// Close closes the bucket.
func (b *Blob) Close() error {
	return b.bucket.Close()
}

// ObjectName is the object name, without extension, for a label value.
func ObjectName(labelValue float64) string {
	return strconv.FormatFloat(labelValue, 'f', -1, 64)
}
