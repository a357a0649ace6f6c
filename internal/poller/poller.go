// Package poller keeps the pipeline status of the selected project fresh by
// fetching it on a fixed interval.
//
// At most one project is selected and at most one polling goroutine runs.
// Changing the selection cancels the previous goroutine's context, which
// aborts its in-flight request, and waits for it to exit before the new one
// starts. Results are also tagged with the selection generation they were
// requested under, so a response that outlives its selection is dropped.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Iron-Ham/webfactory/internal/api"
	"github.com/Iron-Ham/webfactory/internal/clock"
	"github.com/Iron-Ham/webfactory/internal/event"
	"github.com/Iron-Ham/webfactory/internal/logging"
)

// DefaultInterval is the polling cadence used when none is configured.
const DefaultInterval = 3 * time.Second

// MinInterval is the shortest accepted cadence.
const MinInterval = 100 * time.Millisecond

// ErrFetchStatus is the fallback message for a failed fetch.
const ErrFetchStatus = "Failed to fetch status"

const updateBuffer = 8

// ErrClosed is returned by Select after Close.
var ErrClosed = errors.New("poller closed")

// StatusSource is the part of the API client the poller uses.
type StatusSource interface {
	GetPipelineStatus(ctx context.Context, projectID string) (*api.PipelineStatus, error)
}

// Update is one poll result. Exactly one of Status and Err is set. Cause
// is the error behind Err, for callers that branch on it (api.IsNotFound).
type Update struct {
	ProjectID string
	Status    *api.PipelineStatus
	Err       string
	Cause     error
}

// Poller polls the status of one selected project.
type Poller struct {
	source StatusSource
	clock  clock.Clock
	bus    *event.Bus
	logger *logging.Logger

	// ctl serializes Select, Clear, Close and SetInterval.
	ctl      sync.Mutex
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	ticker   *clock.Ticker

	mu       sync.RWMutex
	gen      uint64
	selected string
	active   bool
	closed   bool
	status   *api.PipelineStatus
	loading  bool
	err      string

	updates chan Update
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the polling cadence. Values below MinInterval are
// raised to it.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = clampInterval(d) }
}

// WithClock replaces the real clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(p *Poller) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithBus publishes pipeline events on bus.
func WithBus(bus *event.Bus) Option {
	return func(p *Poller) { p.bus = bus }
}

// WithLogger sets the poller's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates an idle poller.
func New(source StatusSource, opts ...Option) *Poller {
	p := &Poller{
		source:   source,
		clock:    clock.Real(),
		logger:   logging.NopLogger(),
		interval: DefaultInterval,
		updates:  make(chan Update, updateBuffer),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.WithComponent("poller")
	return p
}

func clampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// Select starts polling projectID, replacing any previous selection. The
// first fetch happens immediately. Selecting the project that is already
// selected does nothing, and selecting "" is the same as Clear.
func (p *Poller) Select(projectID string) error {
	if projectID == "" {
		p.Clear()
		return nil
	}

	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.mu.RLock()
	closed, same := p.closed, p.active && p.selected == projectID
	p.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if same {
		return nil
	}

	p.stopLocked()

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.selected = projectID
	p.active = true
	p.status = nil
	p.err = ""
	p.loading = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.ticker = p.clock.NewTicker(p.interval)

	p.logger.Debug("polling started", "project_id", projectID, "interval", p.interval.String())
	go p.run(ctx, gen, projectID, p.ticker, p.done)
	return nil
}

// Clear stops polling and forgets the selection.
func (p *Poller) Clear() {
	p.ctl.Lock()
	defer p.ctl.Unlock()
	p.stopLocked()
	p.resetState()
}

// Close stops polling for good and closes the Updates channel. Later calls
// to Select return ErrClosed. Close is safe to call more than once.
func (p *Poller) Close() error {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil
	}

	p.stopLocked()
	p.resetState()

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	close(p.updates)
	return nil
}

// SetInterval changes the cadence, applying it to the running selection.
func (p *Poller) SetInterval(d time.Duration) {
	p.ctl.Lock()
	defer p.ctl.Unlock()

	p.interval = clampInterval(d)
	if p.ticker != nil {
		p.ticker.Reset(p.interval)
	}
	p.logger.Info("poll interval changed", "interval", p.interval.String())
}

// Interval returns the current cadence.
func (p *Poller) Interval() time.Duration {
	p.ctl.Lock()
	defer p.ctl.Unlock()
	return p.interval
}

// stopLocked cancels the running goroutine and waits for it to exit.
// p.ctl must be held.
func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
	p.ticker = nil
}

func (p *Poller) resetState() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.selected = ""
	p.active = false
	p.status = nil
	p.err = ""
	p.loading = false
}

func (p *Poller) run(ctx context.Context, gen uint64, projectID string, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	logger := p.logger.WithProject(projectID)
	p.fetch(ctx, gen, projectID, logger)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx, gen, projectID, logger)
		}
	}
}

func (p *Poller) fetch(ctx context.Context, gen uint64, projectID string, logger *logging.Logger) {
	status, err := p.source.GetPipelineStatus(ctx, projectID)
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.loading = false
	if err != nil {
		p.err = errMessage(err)
		msg := p.err
		p.mu.Unlock()

		logger.Warn("status fetch failed", "error", msg)
		p.publish(event.NewPipelineFetchFailedEvent(projectID, msg))
		p.send(Update{ProjectID: projectID, Err: msg, Cause: err})
		return
	}
	p.status = status.Clone()
	p.err = ""
	p.mu.Unlock()

	logger.Debug("status fetched", "status", string(status.Status))
	p.publish(event.NewPipelineUpdatedEvent(projectID, status.Clone()))
	p.send(Update{ProjectID: projectID, Status: status.Clone()})
}

// send delivers u without blocking, discarding the oldest queued update
// when the buffer is full. Only the polling goroutine sends.
func (p *Poller) send(u Update) {
	for {
		select {
		case p.updates <- u:
			return
		default:
		}
		select {
		case <-p.updates:
		default:
		}
	}
}

func (p *Poller) publish(e event.Event) {
	if p.bus != nil {
		p.bus.Publish(e)
	}
}

func errMessage(err error) string {
	if err.Error() == "" {
		return ErrFetchStatus
	}
	return err.Error()
}

// Updates streams poll results. The channel is buffered; when a reader falls
// behind the oldest results are dropped. It is closed by Close.
func (p *Poller) Updates() <-chan Update {
	return p.updates
}

// Status returns a copy of the latest snapshot, or nil before the first
// successful fetch of the current selection.
func (p *Poller) Status() *api.PipelineStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.Clone()
}

// Loading reports whether the first fetch of the current selection is
// still outstanding.
func (p *Poller) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Err returns the message of the most recent failed fetch, cleared by the
// next success.
func (p *Poller) Err() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Selected returns the selected project id.
func (p *Poller) Selected() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected, p.active
}
