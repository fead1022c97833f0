package zoomsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/wandb/lovely-chart/internal/observability"
	"github.com/wandb/lovely-chart/internal/zoomer"
)

// DefaultCacheSize is how many fetched charts Open keeps.
const DefaultCacheSize = 32

// Open returns the de-duplicated source at a URL: an HTTP endpoint for
// http and https URLs, a bucket otherwise.
func Open(
	ctx context.Context,
	sourceURL string,
	logger *observability.CoreLogger,
) (*Dedup, error) {
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}

	var source zoomer.DataSource
	switch {
	case strings.HasPrefix(sourceURL, "http://"), strings.HasPrefix(sourceURL, "https://"):
		h, err := NewHTTP(sourceURL, WithHTTPLogger(logger))
		if err != nil {
			return nil, err
		}
		source = h
	default:
		b, err := OpenBlob(ctx, sourceURL, logger)
		if err != nil {
			return nil, err
		}
		source = b
	}

	dedup, err := NewDedup(source, DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("zoomsource: %v", err)
	}
	return dedup, nil
}
