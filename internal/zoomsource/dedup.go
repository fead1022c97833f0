package zoomsource

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/zoomer"
)

// Dedup shares one fetch among concurrent requests for the same label and
// remembers the most recent results.
//
// Cached values are raw charts. Analyze reads them without mutating them,
// so one raw chart is shared between callers.
type Dedup struct {
	source zoomer.DataSource
	group  singleflight.Group
	cache  *lru.Cache // nil if caching is disabled
}

// NewDedup wraps a source. A positive cacheSize keeps that many fetched
// charts, including labels without data.
func NewDedup(source zoomer.DataSource, cacheSize int) (*Dedup, error) {
	d := &Dedup{source: source}
	if cacheSize > 0 {
		cache, err := lru.New(cacheSize)
		if err != nil {
			return nil, err
		}
		d.cache = cache
	}
	return d, nil
}

// Fetch implements zoomer.DataSource.
func (d *Dedup) Fetch(
	ctx context.Context,
	labelValue float64,
) (*chartdata.RawChart, error) {
	key := ObjectName(labelValue)

	if d.cache != nil {
		if cached, ok := d.cache.Get(key); ok {
			raw, _ := cached.(*chartdata.RawChart)
			return raw, nil
		}
	}

	result, err, _ := d.group.Do(key, func() (any, error) {
		return d.source.Fetch(ctx, labelValue)
	})
	if err != nil {
		return nil, err
	}

	raw, _ := result.(*chartdata.RawChart)
	if d.cache != nil {
		d.cache.Add(key, raw)
	}
	return raw, nil
}
