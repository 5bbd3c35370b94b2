package listview

import (
	"context"

	"github.com/sadopc/apitrack/internal/tracker"
)

// Phase is the state of the list view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// Filters are the server-side filters edited in the filter bar. They take
// effect only through ApplyFilters.
type Filters struct {
	Method tracker.Method
	Status string // "", "true" or "false"
	Code   string
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Fetch is a page request issued by the store. Seq identifies it when the
// result comes back.
type Fetch struct {
	Seq   uint64
	Query tracker.ListQuery
}

// Result is the outcome of executing a Fetch.
type Result[T any] struct {
	Seq  uint64
	Page tracker.Page[T]
	Err  error
}

// Fetcher loads one page for a query.
type Fetcher[T any] func(ctx context.Context, q tracker.ListQuery) (tracker.Page[T], error)

// Run executes cmd with f. It is meant to be wrapped in a tea.Cmd.
func Run[T any](ctx context.Context, f Fetcher[T], cmd Fetch) Result[T] {
	page, err := f(ctx, cmd.Query)
	return Result[T]{Seq: cmd.Seq, Page: page, Err: err}
}

// Resolution tells the caller what Resolve did.
type Resolution struct {
	// Applied is false for stale results.
	Applied bool
	// Follow is set when the current page fell past the last page and the
	// store issued a fetch for the new last page.
	Follow *Fetch
}

// Store is the view state of one paged list. It is not safe for concurrent
// use; it belongs to the UI event loop.
type Store[T any] struct {
	refiner *Refiner[T]

	searchTerm string
	sort       Sort
	draft      Filters

	// applied is what the server is asked for: committed search term and
	// filters plus the current page and page size.
	applied tracker.ListQuery
	// shown is the query behind items. A failed fetch rolls applied back
	// to it so page, window and filters keep describing items.
	shown tracker.ListQuery

	items []T
	total int
	phase Phase
	err   error

	seq    uint64
	loaded bool
}

// NewStore creates a store with the given page size. refiner may be nil.
func NewStore[T any](pageSize int, refiner *Refiner[T]) *Store[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	q := tracker.ListQuery{Page: 1, PageSize: pageSize}
	return &Store[T]{refiner: refiner, applied: q, shown: q}
}

func (s *Store[T]) issue() Fetch {
	s.seq++
	s.phase = PhaseLoading
	return Fetch{Seq: s.seq, Query: s.applied}
}

// Load issues the initial fetch.
func (s *Store[T]) Load() Fetch {
	return s.issue()
}

// Refresh re-fetches the current query, e.g. after a mutation.
func (s *Store[T]) Refresh() Fetch {
	return s.issue()
}

// SetSearchTerm changes the local refinement only.
func (s *Store[T]) SetSearchTerm(term string) {
	s.searchTerm = term
}

// SetSort changes the local ordering only.
func (s *Store[T]) SetSort(field string, order Order) {
	s.sort = Sort{Field: field, Order: order}
}

// ToggleSort sorts by field ascending, or flips the order if field is
// already the sort field.
func (s *Store[T]) ToggleSort(field string) {
	if s.sort.Field == field {
		if s.sort.Order == Asc {
			s.sort.Order = Desc
		} else {
			s.sort.Order = Asc
		}
		return
	}
	s.sort = Sort{Field: field, Order: Asc}
}

// SetFilters edits the filter draft without fetching.
func (s *Store[T]) SetFilters(f Filters) {
	s.draft = f
}

// SetPage moves to page n. It returns false when n is already current or
// out of range, in which case nothing is fetched.
func (s *Store[T]) SetPage(n int) (Fetch, bool) {
	if n < 1 {
		return Fetch{}, false
	}
	if tp := s.TotalPages(); s.loaded && tp > 0 && n > tp {
		return Fetch{}, false
	}
	if n == s.applied.Page {
		return Fetch{}, false
	}
	s.applied.Page = n
	return s.issue(), true
}

// NextPage is SetPage(current+1).
func (s *Store[T]) NextPage() (Fetch, bool) { return s.SetPage(s.applied.Page + 1) }

// PrevPage is SetPage(current-1).
func (s *Store[T]) PrevPage() (Fetch, bool) { return s.SetPage(s.applied.Page - 1) }

// SetPageSize changes the page size and returns to page 1.
func (s *Store[T]) SetPageSize(n int) (Fetch, bool) {
	if n <= 0 || n == s.applied.PageSize {
		return Fetch{}, false
	}
	s.applied.PageSize = n
	s.applied.Page = 1
	return s.issue(), true
}

// ApplyFilters commits the search term and the filter draft to the server
// query and fetches page 1.
func (s *Store[T]) ApplyFilters() Fetch {
	s.applied.SearchTerm = s.searchTerm
	s.applied.Method = s.draft.Method
	s.applied.Status = s.draft.Status
	s.applied.Code = s.draft.Code
	s.applied.Page = 1
	return s.issue()
}

// ClearFilters resets search term and filters and fetches page 1.
func (s *Store[T]) ClearFilters() Fetch {
	s.searchTerm = ""
	s.draft = Filters{}
	s.applied.SearchTerm = ""
	s.applied.Method = ""
	s.applied.Status = ""
	s.applied.Code = ""
	s.applied.Page = 1
	return s.issue()
}

// Resolve applies r if it answers the most recently issued fetch. On error
// the previous items and total are kept, and so is the query that loaded
// them.
func (s *Store[T]) Resolve(r Result[T]) Resolution {
	if r.Seq != s.seq {
		return Resolution{}
	}
	if r.Err != nil {
		s.phase = PhaseError
		s.err = r.Err
		s.applied = s.shown
		return Resolution{Applied: true}
	}

	s.items = r.Page.Items
	s.total = r.Page.Total
	s.err = nil
	s.phase = PhaseIdle
	s.loaded = true

	tp := s.TotalPages()
	switch {
	case tp == 0:
		s.applied.Page = 1
	case s.applied.Page > tp:
		s.applied.Page = tp
		s.shown = s.applied
		f := s.issue()
		return Resolution{Applied: true, Follow: &f}
	}
	s.shown = s.applied
	return Resolution{Applied: true}
}

// Visible returns the fetched page after local search and sort.
func (s *Store[T]) Visible() []T {
	if s.refiner == nil {
		return append([]T(nil), s.items...)
	}
	return s.refiner.Apply(s.items, s.searchTerm, s.sort)
}

// Items returns the page as the server sent it.
func (s *Store[T]) Items() []T { return s.items }

// Total is the server-reported item count.
func (s *Store[T]) Total() int { return s.total }

// Page is the current 1-based page.
func (s *Store[T]) Page() int { return s.applied.Page }

// PageSize is the current page size.
func (s *Store[T]) PageSize() int { return s.applied.PageSize }

// TotalPages derives the page count from the last applied total.
func (s *Store[T]) TotalPages() int { return TotalPages(s.total, s.applied.PageSize) }

// Window returns the pager layout for the current page.
func (s *Store[T]) Window(maxVisible int) []Button {
	return PageWindow(s.applied.Page, s.total, s.applied.PageSize, maxVisible)
}

// SearchTerm is the local search term.
func (s *Store[T]) SearchTerm() string { return s.searchTerm }

// SortState is the local sort.
func (s *Store[T]) SortState() Sort { return s.sort }

// Draft is the unapplied filter draft.
func (s *Store[T]) Draft() Filters { return s.draft }

// Query is the server query in effect: the most recent fetch's while it is
// pending or applied, the last loaded one after a failure.
func (s *Store[T]) Query() tracker.ListQuery { return s.applied }

// Phase is the current load phase.
func (s *Store[T]) Phase() Phase { return s.phase }

// Err is the error of the last failed fetch, cleared by the next success.
func (s *Store[T]) Err() error { return s.err }

// Loaded reports whether any fetch has succeeded.
func (s *Store[T]) Loaded() bool { return s.loaded }

// LastSeq is the sequence number of the most recently issued fetch.
func (s *Store[T]) LastSeq() uint64 { return s.seq }
