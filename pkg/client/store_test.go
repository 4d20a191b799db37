package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type testItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// pageServer serves a fixed set of items through the list envelope, with an
// optional per-request delay hook for staleness tests.
type pageServer struct {
	mu       sync.Mutex
	items    []testItem
	pageSize int
	delay    func(r *http.Request) time.Duration
}

func (s *pageServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.delay != nil {
			time.Sleep(s.delay(r))
		}

		s.mu.Lock()
		items := append([]testItem(nil), s.items...)
		s.mu.Unlock()

		search := r.URL.Query().Get("search")
		if search != "" {
			filtered := items[:0]
			for _, it := range items {
				if search == it.Name {
					filtered = append(filtered, it)
				}
			}
			items = filtered
		}

		page := 1
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		if page < 1 {
			page = 1
		}

		last := (len(items) + s.pageSize - 1) / s.pageSize
		if page > last && last > 0 {
			page = last
		}

		start := (page - 1) * s.pageSize
		end := start + s.pageSize
		if start > len(items) {
			start = len(items)
		}
		if end > len(items) {
			end = len(items)
		}

		data := items[start:end]
		if data == nil {
			data = []testItem{}
		}

		json.NewEncoder(w).Encode(Page[testItem]{
			Data:        data,
			CurrentPage: page,
			LastPage:    last,
		})
	}
}

func (s *pageServer) remove(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func seedItems(n int) []testItem {
	items := make([]testItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, testItem{ID: uint(i), Name: fmt.Sprintf("item-%02d", i)})
	}
	return items
}

func TestListStore_FetchPage(t *testing.T) {
	srv := httptest.NewServer((&pageServer{items: seedItems(25), pageSize: 10}).handler())
	defer srv.Close()

	store := NewListStore[testItem](New(srv.URL), "/things")
	if err := store.FetchPage(context.Background(), 2, ""); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	state := store.Snapshot()
	if state.CurrentPage != 2 || state.LastPage != 3 {
		t.Errorf("page=%d/%d; want 2/3", state.CurrentPage, state.LastPage)
	}
	if len(state.Records) != 10 {
		t.Errorf("len(Records)=%d; want 10", len(state.Records))
	}
	if state.Loading || state.Err != nil {
		t.Errorf("Loading=%v Err=%v; want settled clean state", state.Loading, state.Err)
	}
}

func TestListStore_LastRequestWins(t *testing.T) {
	ps := &pageServer{items: seedItems(25), pageSize: 10}
	// The request for page 1 straggles; page 2 answers immediately.
	ps.delay = func(r *http.Request) time.Duration {
		if r.URL.Query().Get("page") == "1" {
			return 80 * time.Millisecond
		}
		return 0
	}
	srv := httptest.NewServer(ps.handler())
	defer srv.Close()

	store := NewListStore[testItem](New(srv.URL), "/things")
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.FetchPage(ctx, 1, "")
	}()
	time.Sleep(20 * time.Millisecond) // let the slow request take its sequence number
	if err := store.FetchPage(ctx, 2, ""); err != nil {
		t.Fatalf("FetchPage(2): %v", err)
	}
	wg.Wait()

	// The stale page 1 response must not have clobbered page 2.
	state := store.Snapshot()
	if state.CurrentPage != 2 {
		t.Errorf("CurrentPage=%d; want 2 (stale response discarded)", state.CurrentPage)
	}
	if state.Records[0].Name != "item-11" {
		t.Errorf("first record=%q; want item-11", state.Records[0].Name)
	}
}

func TestListStore_ErrorKeepsPriorRecords(t *testing.T) {
	ps := &pageServer{items: seedItems(5), pageSize: 10}
	var failing bool
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fail := failing
		mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"code": 500, "message": "internal error"})
			return
		}
		ps.handler()(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewListStore[testItem](New(srv.URL), "/things")
	ctx := context.Background()

	if err := store.FetchPage(ctx, 1, ""); err != nil {
		t.Fatalf("first FetchPage: %v", err)
	}

	mu.Lock()
	failing = true
	mu.Unlock()

	if err := store.FetchPage(ctx, 1, ""); err == nil {
		t.Fatal("expected error from failing fetch")
	}

	state := store.Snapshot()
	if state.Err == nil {
		t.Error("expected Err recorded in state")
	}
	if len(state.Records) != 5 {
		t.Errorf("len(Records)=%d; prior records must survive a failed fetch", len(state.Records))
	}
}

func TestListStore_DeleteRefetchesAndLandsOnClampedPage(t *testing.T) {
	ps := &pageServer{items: seedItems(11), pageSize: 10}
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /things/{id}", func(w http.ResponseWriter, r *http.Request) {
		var id uint
		fmt.Sscanf(r.PathValue("id"), "%d", &id)
		ps.remove(id)
		json.NewEncoder(w).Encode(map[string]any{"code": 200, "message": "success"})
	})
	mux.HandleFunc("/things", ps.handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewListStore[testItem](New(srv.URL), "/things")
	ctx := context.Background()

	if err := store.FetchPage(ctx, 2, ""); err != nil {
		t.Fatalf("FetchPage(2): %v", err)
	}
	if got := store.Snapshot(); len(got.Records) != 1 {
		t.Fatalf("page 2 should hold the single overflow record, got %d", len(got.Records))
	}

	// Deleting the only record of page 2 lands the store on page 1.
	if err := store.Delete(ctx, 11); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	state := store.Snapshot()
	if state.CurrentPage != 1 {
		t.Errorf("CurrentPage=%d; want clamped to 1", state.CurrentPage)
	}
	if len(state.Records) != 10 {
		t.Errorf("len(Records)=%d; want 10", len(state.Records))
	}
	if state.LastPage != 1 {
		t.Errorf("LastPage=%d; want 1", state.LastPage)
	}
}

func TestListStore_DeleteFailureLeavesStateAlone(t *testing.T) {
	ps := &pageServer{items: seedItems(3), pageSize: 10}
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"code": 409, "message": "cannot delete category with products"})
	})
	mux.HandleFunc("/things", ps.handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := NewListStore[testItem](New(srv.URL), "/things")
	ctx := context.Background()

	if err := store.FetchPage(ctx, 1, ""); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	err := store.Delete(ctx, 2)
	if err == nil {
		t.Fatal("expected delete refusal error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("Status=%d; want 409", apiErr.Status)
	}
	if apiErr.Message != "cannot delete category with products" {
		t.Errorf("Message=%q; want the refusal message", apiErr.Message)
	}

	if state := store.Snapshot(); len(state.Records) != 3 {
		t.Errorf("len(Records)=%d; refused delete must keep the row", len(state.Records))
	}
}
