package listview

import (
	"context"
	"log/slog"
	"sync"
)

// ViewConfig wires a View.
type ViewConfig[T any] struct {
	// ID names the view and doubles as the persistence key when PersistKey is empty.
	ID         string
	PersistKey string
	Columns    []Column
	Defaults   Defaults
	Fetcher    Fetcher[T]
	Persister  Persister
	Observer   FetchObserver
	Logger     *slog.Logger
	// OnChange, when set, receives the model after every accepted fetch.
	OnChange func(Model[T])
}

// View composes the Store and the Loader behind the intents a table and its
// filter bar emit. Every intent updates the state, persists it, and starts a
// fetch; only the response for the latest state is ever shown.
type View[T any] struct {
	columns  []Column
	sortable map[string]bool
	onChange func(Model[T])

	mu       sync.Mutex
	store    *Store
	loader   *Loader[T]
	pending  uint64
	status   Status
	page     PageResponse[T]
	err      error
	expanded bool
}

// NewView restores the view's state. No fetch starts until Refresh or an intent.
func NewView[T any](ctx context.Context, cfg ViewConfig[T]) *View[T] {
	key := cfg.PersistKey
	if key == "" {
		key = cfg.ID
	}
	v := &View[T]{
		columns:  cfg.Columns,
		sortable: make(map[string]bool, len(cfg.Columns)),
		onChange: cfg.OnChange,
		status:   StatusLoading,
	}
	for _, col := range cfg.Columns {
		if col.Sortable {
			v.sortable[col.Key] = true
		}
	}
	v.store = NewStore(ctx, StoreConfig{
		Key:       key,
		Persister: cfg.Persister,
		Defaults:  cfg.Defaults,
		Logger:    cfg.Logger,
	})
	v.loader = NewLoader(LoaderConfig[T]{
		View:     cfg.ID,
		Fetcher:  cfg.Fetcher,
		OnUpdate: v.accept,
		Observer: cfg.Observer,
		Logger:   cfg.Logger,
	})
	return v
}

// State returns the current FilterState.
func (v *View[T]) State() FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.store.State()
}

// Refresh re-fetches the current state.
func (v *View[T]) Refresh(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.load(ctx)
}

func (v *View[T]) ChangePage(ctx context.Context, n int) {
	v.mutate(ctx, func(s *Store) { s.SetPage(ctx, n) })
}

func (v *View[T]) ChangePageSize(ctx context.Context, n int) {
	v.mutate(ctx, func(s *Store) { s.SetPageSize(ctx, n) })
}

// ToggleSort handles a click on a column header. Columns not marked sortable
// are ignored.
func (v *View[T]) ToggleSort(ctx context.Context, column string) {
	if !v.sortable[column] {
		return
	}
	v.mutate(ctx, func(s *Store) { s.ToggleSort(ctx, column) })
}

// ChangeSort sets an explicit sort, as the URL or a sort menu would.
func (v *View[T]) ChangeSort(ctx context.Context, column string, dir SortDirection) {
	if column != "" && !v.sortable[column] {
		return
	}
	v.mutate(ctx, func(s *Store) { s.SetSort(ctx, column, dir) })
}

func (v *View[T]) ChangeSearch(ctx context.Context, text string) {
	v.mutate(ctx, func(s *Store) { s.SetSearch(ctx, text) })
}

func (v *View[T]) ChangeDateRange(ctx context.Context, r *DateRange) {
	v.mutate(ctx, func(s *Store) { s.SetDateRange(ctx, r) })
}

func (v *View[T]) ChangeFilter(ctx context.Context, key, value string) {
	v.mutate(ctx, func(s *Store) { s.SetExtraFilter(ctx, key, value) })
}

// Apply replaces the whole state, e.g. with one parsed from a request URL.
func (v *View[T]) Apply(ctx context.Context, state FilterState) {
	v.mutate(ctx, func(s *Store) { s.Replace(ctx, state) })
}

func (v *View[T]) ClearAll(ctx context.Context) {
	v.mutate(ctx, func(s *Store) { s.ClearAll(ctx) })
}

// ToggleFilters expands or collapses the filter panel. It is not part of the
// FilterState and triggers no fetch.
func (v *View[T]) ToggleFilters() {
	v.mu.Lock()
	v.expanded = !v.expanded
	v.mu.Unlock()
}

// Model returns the render model for the current state.
func (v *View[T]) Model() Model[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modelLocked()
}

// Wait blocks until in-flight fetches have completed.
func (v *View[T]) Wait() {
	v.loader.Wait()
}

// Close cancels any in-flight fetch.
func (v *View[T]) Close() {
	v.loader.Close()
}

func (v *View[T]) mutate(ctx context.Context, fn func(*Store)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.store)
	v.load(ctx)
}

// load must be called with v.mu held.
func (v *View[T]) load(ctx context.Context) {
	v.status = StatusLoading
	v.err = nil
	v.pending = v.loader.Load(ctx, v.store.State())
}

func (v *View[T]) accept(res Result[T]) {
	v.mu.Lock()
	if res.Seq != v.pending {
		v.mu.Unlock()
		return
	}
	switch {
	case res.Err != nil:
		v.status = StatusError
		v.err = res.Err
		v.page = PageResponse[T]{}
	case len(res.Page.Data) == 0:
		v.status = StatusEmpty
		v.page = res.Page
	default:
		v.status = StatusReady
		v.page = res.Page
	}
	model := v.modelLocked()
	v.mu.Unlock()
	if v.onChange != nil {
		v.onChange(model)
	}
}

func (v *View[T]) modelLocked() Model[T] {
	m := BuildModel(v.columns, v.store.State(), v.status, v.page, v.err)
	m.FiltersExpanded = v.expanded
	return m
}
