package client

import (
	"context"
	"sync"
)

// State is a point-in-time snapshot of a ListStore.
type State[T any] struct {
	Records     []T
	CurrentPage int
	LastPage    int
	Search      string
	Loading     bool
	Err         error
}

// ListStore holds one resource listing: the current page of records, the
// active search term, and pagination bounds. Concurrent fetches are
// resolved last-request-wins: every FetchPage takes a sequence number and
// a response is applied only if no newer request was issued meanwhile, so
// a slow stale response can never clobber a fresh one.
type ListStore[T any] struct {
	client *Client
	path   string

	mu    sync.Mutex
	seq   uint64
	state State[T]
}

// NewListStore creates a store for the resource at path, e.g.
// "/admin/products".
func NewListStore[T any](c *Client, path string) *ListStore[T] {
	if c == nil {
		panic("client.NewListStore: client must not be nil")
	}
	return &ListStore[T]{client: c, path: path}
}

// Snapshot returns a copy of the current state.
func (s *ListStore[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FetchPage loads the given page filtered by search. A failed fetch
// records the error but keeps the previously loaded records visible.
// Returns nil when the response was superseded by a newer request.
func (s *ListStore[T]) FetchPage(ctx context.Context, page int, search string) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.state.Loading = true
	s.mu.Unlock()

	result, err := FetchPage[T](ctx, s.client, s.path, page, search)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		// A newer request owns the state now.
		return nil
	}

	s.state.Loading = false
	if err != nil {
		s.state.Err = err
		return err
	}

	s.state.Records = result.Data
	s.state.CurrentPage = result.CurrentPage
	s.state.LastPage = result.LastPage
	s.state.Search = search
	s.state.Err = nil
	return nil
}

// Delete removes the record on the server and, on success, refetches the
// current page. The server clamps the page number, so deleting the last
// record of the last page lands the store on the new last page.
func (s *ListStore[T]) Delete(ctx context.Context, id uint) error {
	if err := s.client.Delete(ctx, s.path, id); err != nil {
		return err
	}

	s.mu.Lock()
	page := s.state.CurrentPage
	search := s.state.Search
	s.mu.Unlock()

	if page < 1 {
		page = 1
	}
	return s.FetchPage(ctx, page, search)
}
