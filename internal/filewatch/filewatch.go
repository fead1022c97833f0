// Package filewatch reloads a chart file when it changes on disk.
package filewatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	poller "github.com/radovskyb/watcher"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/wandb/lovely-chart/internal/chartdata"
	"github.com/wandb/lovely-chart/internal/observability"
)

// DefaultPollingPeriod is how often the file is checked.
const DefaultPollingPeriod = 500 * time.Millisecond

// Params configures a Watcher.
type Params struct {
	Logger *observability.CoreLogger

	// Path is the chart file to watch.
	Path string

	// PollingPeriod is how often to poll the file. Defaults to
	// DefaultPollingPeriod.
	PollingPeriod time.Duration

	// OnChart receives the chart each time the file is rewritten.
	//
	// It runs on the watcher's goroutine.
	OnChart func(*chartdata.RawChart)
}

// Watcher polls one chart file.
type Watcher struct {
	mu         sync.Mutex
	logger     *observability.CoreLogger
	fs         afero.Fs
	path       string
	onChart    func(*chartdata.RawChart)
	delegate   *poller.Watcher
	wg         sync.WaitGroup
	isFinished bool
}

// Start begins watching the file at params.Path.
func Start(params Params) (*Watcher, error) {
	if params.Logger == nil {
		params.Logger = observability.NewNoOpLogger()
	}
	if params.PollingPeriod <= 0 {
		params.PollingPeriod = DefaultPollingPeriod
	}
	if params.OnChart == nil {
		return nil, errors.New("filewatch: OnChart is required")
	}

	w := &Watcher{
		logger:   params.Logger.With("path", params.Path),
		fs:       afero.NewOsFs(),
		path:     params.Path,
		onChart:  params.OnChart,
		delegate: poller.New(),
	}

	// The poller may report a Create for an existing file, so both are
	// treated as a rewrite.
	w.delegate.FilterOps(poller.Write, poller.Create)
	if err := w.delegate.Add(params.Path); err != nil {
		return nil, fmt.Errorf("filewatch: %v", err)
	}

	if err := w.start(params.PollingPeriod); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Watcher) start(period time.Duration) error {
	grp, ctx := errgroup.WithContext(context.Background())
	w.wg.Add(2)

	grp.Go(func() error {
		defer w.wg.Done()
		w.loop(ctx)
		return nil
	})

	grp.Go(func() error {
		defer w.wg.Done()
		return w.delegate.Start(period)
	})

	// Close is a no-op until the poller is running.
	started := make(chan struct{})
	go func() {
		w.delegate.Wait()
		close(started)
	}()
	select {
	case <-started:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("filewatch: %v", grp.Wait())
	}
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case event := <-w.delegate.Event:
			if event.IsDir() {
				continue
			}
			w.reload()

		case err := <-w.delegate.Error:
			w.logger.CaptureError(fmt.Errorf("filewatch: %v", err))

		case <-w.delegate.Closed:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) reload() {
	raw, err := chartdata.ParseFile(w.fs, w.path)
	if err != nil {
		// Editors often write files in several steps.
		w.logger.Warn("filewatch: skipping unreadable chart", "error", err)
		return
	}

	w.mu.Lock()
	finished := w.isFinished
	w.mu.Unlock()

	if !finished {
		w.onChart(raw)
	}
}

// Finish stops watching. No callback runs after it returns.
func (w *Watcher) Finish() {
	w.mu.Lock()
	if w.isFinished {
		w.mu.Unlock()
		return
	}
	w.isFinished = true
	w.mu.Unlock()

	w.delegate.Close()
	w.wg.Wait()
}
