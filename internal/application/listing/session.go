package listing

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/listing"
	"go.uber.org/zap"
)

// Phase is the slider interaction state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseCommitting
)

// RatesProvider supplies the current exchange-rate table
type RatesProvider interface {
	Table(ctx context.Context) (currency.RateTable, error)
}

// URLSink receives committed query strings. In a browser-backed
// deployment this is the address bar; echoed navigations come back
// through ApplyURL and are suppressed by the skip-next-sync guard.
type URLSink interface {
	Apply(q url.Values)
}

// ResultHandler receives listing results as fetches complete
type ResultHandler func(page catalog.ProductPage, err error)

// Config holds session tuning knobs
type Config struct {
	Currency     currency.Code // initial display currency
	PageSize     int
	CommitWindow time.Duration // filter commit coalescing window
	DragTimeout  time.Duration // forces a release if drag-end never fires
}

func (c *Config) applyDefaults() {
	if c.Currency == "" {
		c.Currency = currency.BaseCode
	}
	if c.PageSize <= 0 {
		c.PageSize = 12
	}
	if c.CommitWindow <= 0 {
		c.CommitWindow = 800 * time.Millisecond
	}
	if c.DragTimeout <= 0 {
		c.DragTimeout = time.Second
	}
}

// Session keeps the four representations of the listing filter state
// consistent: the live slider range, the canonical filter object, the
// per-currency persisted range, and the shareable URL query string.
// All mutations are serialized by the session mutex; ordering across
// timers follows the debounce windows.
type Session struct {
	mu  sync.Mutex
	log *zap.Logger
	cfg Config

	store    listing.RangeStore
	rates    RatesProvider
	executor catalog.ProductQueryExecutor
	sink     URLSink
	onResult ResultHandler

	display      currency.Code
	prevCurrency currency.Code
	cats         []listing.CategoryRef

	filter listing.FilterState
	live   listing.PriceRange
	page   int

	urlQuery     url.Values
	urlHasPrices bool
	drawerOpen   bool

	phase               Phase
	skipNextURLSync     bool
	hasManuallyAdjusted bool
	pricesCommitted     bool
	mounted             bool

	commit    *listing.Debouncer
	dragTimer *time.Timer

	fetchGen   uint64
	hasFetched bool
	lastQuery  catalog.ProductQuery
	lastPage   catalog.ProductPage
	lastErr    error
}

// NewSession creates an unmounted session. Call Mount with the initial
// URL query before dispatching events.
func NewSession(cfg Config, store listing.RangeStore, rates RatesProvider, executor catalog.ProductQueryExecutor, sink URLSink, log *zap.Logger) *Session {
	cfg.applyDefaults()
	return &Session{
		log:      log,
		cfg:      cfg,
		store:    store,
		rates:    rates,
		executor: executor,
		sink:     sink,
		display:  cfg.Currency,
		page:     1,
		urlQuery: url.Values{},
		commit:   listing.NewDebouncer(cfg.CommitWindow),
	}
}

// SetResultHandler registers the rendering-layer callback. Must be
// called before Mount.
func (s *Session) SetResultHandler(h ResultHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResult = h
}

// Mount initializes the session from the persisted range and the
// initial URL, then triggers the first fetch. The persisted range
// seeds the slider; explicit URL prices override it exactly once.
func (s *Session) Mount(ctx context.Context, q url.Values) {
	rates := s.tableOrDefault(ctx)

	s.mu.Lock()

	bounds := listing.ResolveBounds(s.display)
	s.live = listing.DefaultRange(bounds)

	if stored, err := s.store.Load(ctx, s.display); err != nil {
		s.log.Warn("persisted range unavailable, using defaults", zap.Error(err))
	} else if stored != nil {
		s.live = listing.NormalizeRange(*stored, bounds)
		s.pricesCommitted = true
	}

	s.urlQuery = cloneValues(q)
	s.urlHasPrices = listing.HasPriceParams(q)

	f, err := listing.DecodeFilter(q, s.cats, s.display, rates, s.live)
	if err != nil {
		s.log.Warn("failed to decode URL prices", zap.Error(err))
	}
	if s.urlHasPrices {
		s.live = f.Range()
		s.pricesCommitted = true
	}
	s.filter = f
	s.page = listing.DecodePage(q)
	s.prevCurrency = s.display
	s.mounted = true

	s.maybeFetchLocked(ctx, rates)
	s.mu.Unlock()
}

// DragMove updates the visual slider value during a drag gesture. It
// never writes to the URL or the persisted store and never triggers a
// fetch. A fallback timer forces a release if drag-end never fires, so
// the session cannot get stuck in the dragging phase.
func (s *Session) DragMove(min, max decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseDragging
	s.live = listing.ClampRange(listing.PriceRange{Min: min, Max: max}, listing.ResolveBounds(s.display))

	// A fresh drag supersedes any pending commit
	s.commit.Stop()

	if s.dragTimer != nil {
		s.dragTimer.Stop()
	}
	s.dragTimer = time.AfterFunc(s.cfg.DragTimeout, s.forceRelease)
}

// DragEnd commits the gesture: the range is normalized, persisted
// (debounced by the store), and handed to the debounced committer.
func (s *Session) DragEnd(ctx context.Context, min, max decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dragTimer != nil {
		s.dragTimer.Stop()
		s.dragTimer = nil
	}

	r := listing.NormalizeRange(listing.PriceRange{Min: min, Max: max}, listing.ResolveBounds(s.display))
	s.commitRangeLocked(ctx, r)
}

// forceRelease fires when a drag never received its end event, e.g.
// pointer capture was lost. The current live range is committed as-is.
func (s *Session) forceRelease() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseDragging {
		return
	}
	r := listing.NormalizeRange(s.live, listing.ResolveBounds(s.display))
	s.commitRangeLocked(context.Background(), r)
}

func (s *Session) commitRangeLocked(ctx context.Context, r listing.PriceRange) {
	s.phase = PhaseCommitting
	s.skipNextURLSync = true
	s.hasManuallyAdjusted = true
	s.pricesCommitted = true
	s.live = r
	s.filter = s.filter.WithRange(r)

	if err := s.store.Save(ctx, s.display, r); err != nil {
		s.log.Warn("failed to persist range", zap.String("currency", s.display.String()), zap.Error(err))
	}

	s.commit.Trigger(s.flushCommit)
}

// SetSearch updates the search text and schedules a commit
func (s *Session) SetSearch(v string) {
	s.editFilter(func(f *listing.FilterState) { f.Search = v })
}

// SetCategory updates the selected category and schedules a commit
func (s *Session) SetCategory(id uuid.UUID) {
	s.editFilter(func(f *listing.FilterState) { f.CategoryID = id })
}

// SetFeatured toggles the featured-only flag and schedules a commit
func (s *Session) SetFeatured(v bool) {
	s.editFilter(func(f *listing.FilterState) { f.Featured = v })
}

// SetInStock toggles the in-stock-only flag and schedules a commit
func (s *Session) SetInStock(v bool) {
	s.editFilter(func(f *listing.FilterState) { f.InStock = v })
}

// SetSort updates the sort key and direction and schedules a commit
func (s *Session) SetSort(by listing.SortBy, order listing.SortOrder) {
	s.editFilter(func(f *listing.FilterState) {
		f.SortBy = by
		f.SortOrder = order
	})
}

func (s *Session) editFilter(edit func(*listing.FilterState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edit(&s.filter)
	s.commit.Trigger(s.flushCommit)
}

// flushCommit runs once per settled burst of filter edits: it encodes
// the filter, writes the URL, resets pagination, closes the filter
// drawer, and triggers exactly one fetch.
func (s *Session) flushCommit() {
	ctx := context.Background()
	rates := s.tableOrDefault(ctx)

	s.mu.Lock()

	// A timer that fired just before a new drag stopped it still runs;
	// it must not write the URL mid-drag.
	if s.phase == PhaseDragging {
		s.mu.Unlock()
		return
	}

	q, err := listing.EncodeFilter(s.filter, s.cats, s.display, rates, s.pricesCommitted)
	if err != nil {
		s.log.Warn("price fields omitted from URL", zap.Error(err))
	}

	s.page = 1
	s.drawerOpen = false
	s.urlQuery = q
	s.urlHasPrices = listing.HasPriceParams(q)
	s.skipNextURLSync = true
	if s.phase == PhaseCommitting {
		s.phase = PhaseIdle
	}

	s.maybeFetchLocked(ctx, rates)
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.Apply(cloneValues(q))
	}
}

// ApplyURL processes an externally observed URL change. A rebuild
// echoed from the session's own commit is ignored exactly once via the
// skip-next-sync guard; genuine navigations rebuild the canonical
// filter and trigger a fetch if it changed.
func (s *Session) ApplyURL(ctx context.Context, q url.Values) {
	rates := s.tableOrDefault(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.skipNextURLSync {
		s.skipNextURLSync = false
		s.urlQuery = cloneValues(q)
		s.urlHasPrices = listing.HasPriceParams(q)
		return
	}

	s.urlQuery = cloneValues(q)
	s.urlHasPrices = listing.HasPriceParams(q)

	f, err := listing.DecodeFilter(q, s.cats, s.display, rates, s.live)
	if err != nil {
		s.log.Warn("failed to decode URL prices", zap.Error(err))
	}
	if s.urlHasPrices {
		s.live = f.Range()
		s.pricesCommitted = true
	}
	s.filter = f
	s.page = listing.DecodePage(q)

	s.maybeFetchLocked(ctx, rates)
}

// SetCurrency switches the display currency and reconciles the live
// range into it. When the URL carries explicit prices the URL wins:
// it is re-decoded in the new currency, even after a manual slider
// adjustment. Otherwise reconciliation rescales the live range, and is
// skipped before mount, during a drag, and after a manual adjustment
// this session. Neither path writes the URL or the store, and neither
// triggers a fetch.
func (s *Session) SetCurrency(ctx context.Context, code currency.Code) {
	rates := s.tableOrDefault(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if code == s.display {
		return
	}
	s.display = code

	if !s.mounted || s.phase == PhaseDragging {
		s.prevCurrency = code
		return
	}

	if s.urlHasPrices {
		f, err := listing.DecodeFilter(s.urlQuery, s.cats, code, rates, s.live)
		if err != nil {
			s.log.Warn("failed to re-decode URL prices after currency change", zap.Error(err))
		}
		s.live = f.Range()
		s.filter = f
		s.prevCurrency = code
		return
	}

	if s.hasManuallyAdjusted {
		s.prevCurrency = code
		return
	}

	r := reconcileRange(s.prevCurrency, code, s.live, rates, s.log)
	s.live = r
	s.filter = s.filter.WithRange(r)
	s.prevCurrency = code
}

// SetCategories installs the loaded category list. A category carried
// by the URL that could not be resolved before the list arrived is
// re-resolved, and a fetch triggered if that changed the filter.
func (s *Session) SetCategories(refs []listing.CategoryRef) {
	ctx := context.Background()
	rates := s.tableOrDefault(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cats = refs

	raw := s.urlQuery.Get(listing.ParamCategory)
	if raw == "" || s.filter.CategoryID != uuid.Nil {
		return
	}
	if id := listing.ResolveCategory(refs, raw); id != uuid.Nil {
		s.filter.CategoryID = id
		s.maybeFetchLocked(ctx, rates)
	}
}

// SetPage moves to another result page and refetches
func (s *Session) SetPage(ctx context.Context, page int) {
	rates := s.tableOrDefault(ctx)

	s.mu.Lock()
	if page < 1 {
		page = 1
	}
	s.page = page

	q := cloneValues(s.urlQuery)
	if page > 1 {
		q.Set(listing.ParamPage, strconv.Itoa(page))
	} else {
		q.Del(listing.ParamPage)
	}
	s.urlQuery = q
	s.skipNextURLSync = true

	s.maybeFetchLocked(ctx, rates)
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.Apply(cloneValues(q))
	}
}

// ClearFilters resets every filter to its default, removes the
// persisted range for the active currency, and schedules a commit.
func (s *Session) ClearFilters(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bounds := listing.ResolveBounds(s.display)
	s.filter = listing.DefaultFilter(bounds)
	s.live = listing.DefaultRange(bounds)
	s.page = 1
	s.pricesCommitted = false
	s.hasManuallyAdjusted = false

	if err := s.store.Clear(ctx, s.display); err != nil {
		s.log.Warn("failed to clear persisted range", zap.String("currency", s.display.String()), zap.Error(err))
	}

	s.commit.Trigger(s.flushCommit)
}

// OpenDrawer marks the filter drawer open; a commit closes it
func (s *Session) OpenDrawer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawerOpen = true
}

// maybeFetchLocked assembles the executor query from the canonical
// filter and starts a fetch only when the assembled query differs from
// the last one issued. Responses are matched by generation so a slow
// earlier request can never overwrite newer results.
func (s *Session) maybeFetchLocked(ctx context.Context, rates currency.RateTable) {
	q, err := BuildQuery(s.filter, s.page, s.cfg.PageSize, s.display, rates, s.pricesCommitted)
	if err != nil {
		s.log.Warn("price bounds omitted from product query", zap.Error(err))
	}
	if s.hasFetched && q.Equal(s.lastQuery) {
		return
	}
	s.lastQuery = q
	s.hasFetched = true
	s.fetchGen++
	go s.runFetch(ctx, s.fetchGen, q)
}

func (s *Session) runFetch(ctx context.Context, gen uint64, q catalog.ProductQuery) {
	page, err := s.executor.Query(ctx, q)

	s.mu.Lock()
	if gen != s.fetchGen {
		s.mu.Unlock()
		return
	}
	s.lastPage = page
	s.lastErr = err
	handler := s.onResult
	s.mu.Unlock()

	if handler != nil {
		handler(page, err)
	}
}

func (s *Session) tableOrDefault(ctx context.Context) currency.RateTable {
	table, err := s.rates.Table(ctx)
	if err != nil {
		s.log.Warn("exchange rates unavailable, using built-in table", zap.Error(err))
		return currency.DefaultRates()
	}
	return table
}

// Close stops all pending timers and invalidates in-flight fetches
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commit.Stop()
	if s.dragTimer != nil {
		s.dragTimer.Stop()
		s.dragTimer = nil
	}
	s.fetchGen++
}

// Filter returns the canonical filter state
func (s *Session) Filter() listing.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// LiveRange returns the slider's current visual range
func (s *Session) LiveRange() listing.PriceRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Currency returns the active display currency
func (s *Session) Currency() currency.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

// Page returns the current result page number
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// URLQuery returns the session's view of the current query string
func (s *Session) URLQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValues(s.urlQuery)
}

// DrawerOpen reports whether the filter drawer is open
func (s *Session) DrawerOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawerOpen
}

// Results returns the most recent listing page and fetch error
func (s *Session) Results() (catalog.ProductPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPage, s.lastErr
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
