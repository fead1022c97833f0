package tooltip

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/wandb/lovely-chart/internal/debounce"
	"github.com/wandb/lovely-chart/internal/frameloop"
	"github.com/wandb/lovely-chart/internal/observability"
)

// ContentUpdateInterval is the minimum time between two content updates
// of a line chart's tooltip.
const ContentUpdateInterval = 100 * time.Millisecond

// Balloon holds the tooltip currently shown.
//
// Content changes are throttled: the first change shows immediately and
// later ones at most once per ContentUpdateInterval, the last one always
// winning. Pie tooltips follow the pointer without throttling.
type Balloon struct {
	loop      frameloop.Loop
	debouncer *debounce.Debouncer

	shown   bool
	content Content
	pending Content

	cancelFlush func()
	isLoading   bool
}

func NewBalloon(loop frameloop.Loop, logger *observability.CoreLogger) *Balloon {
	return &Balloon{
		loop: loop,
		debouncer: debounce.NewDebouncer(
			rate.Every(ContentUpdateInterval), 1, logger,
			debounce.WithClock(loop.Now),
		),
	}
}

// Show updates the balloon with new content.
func (b *Balloon) Show(content Content, immediate bool) {
	b.shown = true
	b.pending = content

	if immediate {
		b.debouncer.UnsetNeedsDebounce()
		b.content = content
		return
	}

	b.debouncer.SetNeedsDebounce()
	b.debouncer.Debounce(b.apply)

	if b.debouncer.NeedsDebounce() && b.cancelFlush == nil {
		b.cancelFlush = b.loop.AfterFunc(ContentUpdateInterval, func() {
			b.cancelFlush = nil
			b.debouncer.Flush(b.apply)
		})
	}
}

// Hide hides the balloon and drops pending content.
func (b *Balloon) Hide() {
	b.shown = false
	b.debouncer.UnsetNeedsDebounce()
	if b.cancelFlush != nil {
		b.cancelFlush()
		b.cancelFlush = nil
	}
}

// Content returns the content shown, if the balloon is visible.
func (b *Balloon) Content() (Content, bool) {
	return b.content, b.shown
}

// SetLoading marks the balloon as waiting for zoom data. The balloon is
// hidden once loading ends.
func (b *Balloon) SetLoading(loading bool) {
	b.isLoading = loading
	if !loading {
		b.Hide()
	}
}

func (b *Balloon) IsLoading() bool {
	return b.isLoading
}

func (b *Balloon) apply() {
	b.content = b.pending
}
