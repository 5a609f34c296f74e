package listview

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// Fetcher retrieves one page from the collaborator for the given query.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, query url.Values) (PageResponse[T], error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc[T any] func(ctx context.Context, query url.Values) (PageResponse[T], error)

func (f FetchFunc[T]) Fetch(ctx context.Context, query url.Values) (PageResponse[T], error) {
	return f(ctx, query)
}

// Fetch outcomes reported to a FetchObserver.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

// FetchObserver receives one call per completed fetch.
type FetchObserver interface {
	ObserveFetch(view, outcome string, elapsed time.Duration)
}

// Result is a completed fetch for the state that requested it.
type Result[T any] struct {
	Seq   uint64
	State FilterState
	Page  PageResponse[T]
	Err   error
}

// LoaderConfig configures a Loader.
type LoaderConfig[T any] struct {
	View     string
	Fetcher  Fetcher[T]
	OnUpdate func(Result[T])
	Observer FetchObserver
	Logger   *slog.Logger
}

// Loader runs fetches in the background and delivers only the result of the
// most recent request. Each Load gets a new sequence number and cancels the
// fetch before it; completions carrying an older sequence are dropped.
type Loader[T any] struct {
	view     string
	fetcher  Fetcher[T]
	onUpdate func(Result[T])
	observer FetchObserver
	logger   *slog.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoader constructs a Loader.
func NewLoader[T any](cfg LoaderConfig[T]) *Loader[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader[T]{
		view:     cfg.View,
		fetcher:  cfg.Fetcher,
		onUpdate: cfg.OnUpdate,
		observer: cfg.Observer,
		logger:   logger,
	}
}

// Load starts a fetch for state and returns its sequence number.
func (l *Loader[T]) Load(ctx context.Context, state FilterState) uint64 {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	if l.cancel != nil {
		l.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.wg.Add(1)
	l.mu.Unlock()

	query := BuildQuery(state)
	l.logger.Debug("fetch list page", slog.String("view", l.view), slog.Uint64("seq", seq), slog.String("query", query.Encode()))
	go func() {
		defer l.wg.Done()
		defer cancel()
		start := time.Now()
		page, err := l.fetcher.Fetch(fetchCtx, query)
		l.deliver(Result[T]{Seq: seq, State: state, Page: page, Err: err}, time.Since(start))
	}()
	return seq
}

// Current returns the sequence number of the latest request.
func (l *Loader[T]) Current() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// Wait blocks until every started fetch has completed.
func (l *Loader[T]) Wait() {
	l.wg.Wait()
}

// Close cancels the in-flight fetch, if any, and waits for it to finish.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	// Anything still completing is stale from here on.
	l.seq++
	l.mu.Unlock()
	l.wg.Wait()
}

func (l *Loader[T]) deliver(res Result[T], elapsed time.Duration) {
	if res.Seq != l.Current() {
		l.observe(OutcomeStale, elapsed)
		l.logger.Debug("discard stale list response", slog.String("view", l.view), slog.Uint64("seq", res.Seq))
		return
	}
	if res.Err != nil {
		l.observe(OutcomeError, elapsed)
	} else {
		l.observe(OutcomeOK, elapsed)
	}
	if l.onUpdate != nil {
		l.onUpdate(res)
	}
}

func (l *Loader[T]) observe(outcome string, elapsed time.Duration) {
	if l.observer != nil {
		l.observer.ObserveFetch(l.view, outcome, elapsed)
	}
}
