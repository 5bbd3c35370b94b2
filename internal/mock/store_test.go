package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/apitrack/internal/tracker"
)

// newTestStore returns an in-memory store whose clock advances one second
// per call, so updated_at ordering is deterministic.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return store
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	e, err := store.Create(ctx, tracker.Payload{
		Endpoint: "https://api.example.com/users",
		Method:   tracker.MethodPOST,
		Headers:  map[string]string{"X-Key": "1"},
		Body:     `{"a":1}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == "" || e.Status || e.Code != nil || e.ResponseTime != nil {
		t.Fatalf("new endpoint = %+v", e)
	}

	got, err := store.Get(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Headers["X-Key"] != "1" || got.Params == nil || got.Body != `{"a":1}` || !got.UpdatedAt.Equal(e.UpdatedAt) {
		t.Errorf("Get = %+v", got)
	}

	newURL := "https://api.example.com/v2/users"
	updated, err := store.Update(ctx, e.ID, Patch{Endpoint: &newURL})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Endpoint != newURL || updated.Method != tracker.MethodPOST || updated.Headers["X-Key"] != "1" {
		t.Errorf("partial update lost fields: %+v", updated)
	}
	if !updated.UpdatedAt.After(e.UpdatedAt) {
		t.Error("update did not bump updated_at")
	}

	if err := store.Delete(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if err := store.Delete(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestStoreListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var ids []string
	for i, p := range []tracker.Payload{
		{Endpoint: "https://a.example.com/health", Method: tracker.MethodGET},
		{Endpoint: "https://b.example.com/orders", Method: tracker.MethodPOST},
		{Endpoint: "https://a.example.com/orders", Method: tracker.MethodGET},
	} {
		e, err := store.Create(ctx, p)
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, e.ID)
	}
	if _, err := store.RecordCall(ctx, ids[0], tracker.IntPtr(200), 0.1); err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordCall(ctx, ids[1], tracker.IntPtr(500), 0.2); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
		total   int
	}{
		{"all newest first", Filter{Page: 1, PageSize: 10}, []string{ids[1], ids[0], ids[2]}, 3},
		{"second page", Filter{Page: 2, PageSize: 2}, []string{ids[2]}, 3},
		{"search", Filter{SearchTerm: "orders", Page: 1, PageSize: 10}, []string{ids[1], ids[2]}, 2},
		{"method", Filter{Method: "get", Page: 1, PageSize: 10}, []string{ids[0], ids[2]}, 2},
		{"active", Filter{Status: "true", Page: 1, PageSize: 10}, []string{ids[0]}, 1},
		{"inactive", Filter{Status: "false", Page: 1, PageSize: 10}, []string{ids[1], ids[2]}, 2},
		{"code", Filter{Code: "500", Page: 1, PageSize: 10}, []string{ids[1]}, 1},
		{"past the end", Filter{Page: 5, PageSize: 10}, nil, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if total != tt.total {
				t.Errorf("total = %d, want %d", total, tt.total)
			}
			if len(items) != len(tt.wantIDs) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if items[i].ID != id {
					t.Errorf("item %d = %s, want %s", i, items[i].ID, id)
				}
			}
		})
	}

	if _, _, err := store.List(ctx, Filter{Code: "abc"}); err == nil {
		t.Error("expected error for non-numeric code")
	}
}

func TestStoreRecordCallAndLogs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	e, err := store.Create(ctx, tracker.Payload{Endpoint: "https://x", Method: tracker.MethodGET})
	if err != nil {
		t.Fatal(err)
	}

	up, err := store.RecordCall(ctx, e.ID, tracker.IntPtr(301), 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if !up.Status || *up.Code != 301 || *up.ResponseTime != 0.25 {
		t.Errorf("after 301: %+v", up)
	}

	down, err := store.RecordCall(ctx, e.ID, nil, 30)
	if err != nil {
		t.Fatal(err)
	}
	if down.Status || down.Code != nil {
		t.Errorf("after transport failure: %+v", down)
	}
	stored, _ := store.Get(ctx, e.ID)
	if stored.Code != nil || stored.Status {
		t.Errorf("stored after failure: %+v", stored)
	}

	for range 3 {
		if _, err := store.RecordCall(ctx, e.ID, tracker.IntPtr(200), 0.1); err != nil {
			t.Fatal(err)
		}
	}

	logs, total, err := store.Logs(ctx, e.ID, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(logs) != 2 {
		t.Fatalf("total = %d, page = %d", total, len(logs))
	}
	if !logs[0].Timestamp.After(logs[1].Timestamp) {
		t.Error("logs should be newest first")
	}

	last, _, err := store.Logs(ctx, e.ID, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 1 || *last[0].StatusCode != 301 || last[0].EndpointID != e.ID {
		t.Errorf("last page = %+v", last)
	}
	mid, _, _ := store.Logs(ctx, e.ID, 2, 2)
	if mid[1].StatusCode != nil {
		t.Errorf("transport failure should have nil status code: %+v", mid[1])
	}

	if err := store.Delete(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Logs(ctx, e.ID, 1, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("logs after delete err = %v", err)
	}
}
