package listview

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/sadopc/apitrack/internal/tracker"
)

// Order is a sort direction.
type Order int

const (
	Asc Order = iota
	Desc
)

func (o Order) String() string {
	if o == Desc {
		return "desc"
	}
	return "asc"
}

// Sort selects a field and direction. An empty Field leaves server order.
type Sort struct {
	Field string
	Order Order
}

type keyKind int

const (
	keyMissing keyKind = iota
	keyText
	keyNumber
	keyTime
)

// Key is the comparable value of one field of one item.
type Key struct {
	kind keyKind
	text string
	num  float64
	at   time.Time
}

// TextKey compares lexicographically. An empty string counts as missing.
func TextKey(s string) Key {
	if s == "" {
		return Key{}
	}
	return Key{kind: keyText, text: s}
}

// NumberKey compares numerically.
func NumberKey(f float64) Key { return Key{kind: keyNumber, num: f} }

// TimeKey compares chronologically. The zero time counts as missing.
func TimeKey(t time.Time) Key {
	if t.IsZero() {
		return Key{}
	}
	return Key{kind: keyTime, at: t}
}

// MissingKey sorts after every defined key in both directions.
func MissingKey() Key { return Key{} }

// IntPtrKey is NumberKey for optional integers.
func IntPtrKey(p *int) Key {
	if p == nil {
		return Key{}
	}
	return NumberKey(float64(*p))
}

// FloatPtrKey is NumberKey for optional floats.
func FloatPtrKey(p *float64) Key {
	if p == nil {
		return Key{}
	}
	return NumberKey(*p)
}

// BoolKey orders false before true.
func BoolKey(b bool) Key {
	if b {
		return NumberKey(1)
	}
	return NumberKey(0)
}

// Missing reports whether k has no value.
func (k Key) Missing() bool { return k.kind == keyMissing }

// compareKeys orders defined keys by order and puts missing keys last.
func compareKeys(a, b Key, order Order) int {
	switch {
	case a.Missing() && b.Missing():
		return 0
	case a.Missing():
		return 1
	case b.Missing():
		return -1
	}
	var c int
	switch a.kind {
	case keyText:
		c = strings.Compare(a.text, b.text)
	case keyNumber:
		c = cmp.Compare(a.num, b.num)
	case keyTime:
		c = a.at.Compare(b.at)
	}
	if order == Desc {
		c = -c
	}
	return c
}

// Refiner is the client-side search and sort applied to an already fetched
// page. It never changes the server total.
type Refiner[T any] struct {
	// Search returns the text the search term is matched against. Nil
	// disables searching.
	Search func(T) string
	// Fields maps sortable field names to key extractors.
	Fields map[string]func(T) Key
}

// Sortable reports whether field has a key extractor.
func (r *Refiner[T]) Sortable(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// FieldNames returns the sortable field names in lexical order.
func (r *Refiner[T]) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Filter keeps items whose search text contains term, case-insensitively.
// A blank term keeps everything. The input slice is never modified.
func (r *Refiner[T]) Filter(items []T, term string) []T {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || r.Search == nil {
		return slices.Clone(items)
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(r.Search(it)), term) {
			out = append(out, it)
		}
	}
	return out
}

// Sort orders items in place by s. Ties keep their original relative order.
// Unknown fields leave items untouched.
func (r *Refiner[T]) Sort(items []T, s Sort) {
	key, ok := r.Fields[s.Field]
	if !ok {
		return
	}
	slices.SortStableFunc(items, func(a, b T) int {
		return compareKeys(key(a), key(b), s.Order)
	})
}

// Apply filters then sorts, returning a new slice.
func (r *Refiner[T]) Apply(items []T, term string, s Sort) []T {
	out := r.Filter(items, term)
	r.Sort(out, s)
	return out
}

// Sort field names understood by EndpointRefiner.
const (
	FieldEndpoint     = "endpoint"
	FieldMethod       = "method"
	FieldStatus       = "status"
	FieldCode         = "code"
	FieldResponseTime = "response_time"
	FieldUpdatedAt    = "updated_at"
	FieldTimestamp    = "timestamp"
	FieldStatusCode   = "status_code"
)

// EndpointRefiner searches the endpoint URL and sorts by any list column.
func EndpointRefiner() *Refiner[tracker.Endpoint] {
	return &Refiner[tracker.Endpoint]{
		Search: func(e tracker.Endpoint) string { return e.Endpoint },
		Fields: map[string]func(tracker.Endpoint) Key{
			FieldEndpoint:     func(e tracker.Endpoint) Key { return TextKey(e.Endpoint) },
			FieldMethod:       func(e tracker.Endpoint) Key { return TextKey(string(e.Method)) },
			FieldStatus:       func(e tracker.Endpoint) Key { return BoolKey(e.Status) },
			FieldCode:         func(e tracker.Endpoint) Key { return IntPtrKey(e.Code) },
			FieldResponseTime: func(e tracker.Endpoint) Key { return FloatPtrKey(e.ResponseTime) },
			FieldUpdatedAt:    func(e tracker.Endpoint) Key { return TimeKey(e.UpdatedAt) },
		},
	}
}

// LogRefiner sorts call logs; logs are not searchable.
func LogRefiner() *Refiner[tracker.CallLog] {
	return &Refiner[tracker.CallLog]{
		Fields: map[string]func(tracker.CallLog) Key{
			FieldTimestamp:    func(l tracker.CallLog) Key { return TimeKey(l.Timestamp) },
			FieldStatusCode:   func(l tracker.CallLog) Key { return IntPtrKey(l.StatusCode) },
			FieldResponseTime: func(l tracker.CallLog) Key { return NumberKey(l.ResponseTime) },
		},
	}
}
