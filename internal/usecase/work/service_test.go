package work

import (
	"context"
	"errors"
	"testing"

	"github.com/cinedex-cloud/cinedex/internal/domain"
	"github.com/cinedex-cloud/cinedex/internal/domain/search"
	domwork "github.com/cinedex-cloud/cinedex/internal/domain/work"
	"github.com/cinedex-cloud/cinedex/internal/query"
)

type repoMock struct {
	getFunc    func(ctx context.Context, id string) (domwork.Work, error)
	searchFunc func(ctx context.Context, spec query.Spec) ([]domwork.Work, error)
}

func (m *repoMock) Get(ctx context.Context, id string) (domwork.Work, error) {
	return m.getFunc(ctx, id)
}

func (m *repoMock) Search(ctx context.Context, spec query.Spec) ([]domwork.Work, error) {
	return m.searchFunc(ctx, spec)
}

// memCache backs both cache contracts with plain maps.
type memCache struct {
	entities map[string]domwork.Work
	lists    map[string][]domwork.Preview
	getErr   error
	setErr   error
}

func newMemCache() *memCache {
	return &memCache{
		entities: map[string]domwork.Work{},
		lists:    map[string][]domwork.Preview{},
	}
}

func (c *memCache) Get(_ context.Context, key string) (*domwork.Work, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if w, ok := c.entities[key]; ok {
		return &w, nil
	}
	return nil, nil
}

func (c *memCache) Set(_ context.Context, key string, v domwork.Work) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entities[key] = v
	return nil
}

func (c *memCache) GetList(_ context.Context, key string) ([]domwork.Preview, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	if items, ok := c.lists[key]; ok {
		return items, nil
	}
	return nil, nil
}

func (c *memCache) SetList(_ context.Context, key string, items []domwork.Preview) error {
	if c.setErr != nil {
		return c.setErr
	}
	if items == nil {
		items = []domwork.Preview{}
	}
	c.lists[key] = items
	return nil
}

func TestGetByID_SecondReadServedFromCache(t *testing.T) {
	calls := 0
	repo := &repoMock{
		getFunc: func(_ context.Context, id string) (domwork.Work, error) {
			calls++
			return domwork.Work{ID: id, Title: "The Matrix"}, nil
		},
	}
	cache := newMemCache()
	svc := New(repo, cache, cache)

	for i := 0; i < 2; i++ {
		w, err := svc.GetByID(context.Background(), "w-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w.Title != "The Matrix" {
			t.Errorf("unexpected work: %+v", w)
		}
	}
	if calls != 1 {
		t.Errorf("storage hit %d times, want 1", calls)
	}
}

func TestGetByID_NotFoundNeverCached(t *testing.T) {
	calls := 0
	repo := &repoMock{
		getFunc: func(_ context.Context, _ string) (domwork.Work, error) {
			calls++
			return domwork.Work{}, domain.ErrNotFound
		},
	}
	cache := newMemCache()
	svc := New(repo, cache, cache)

	for i := 0; i < 2; i++ {
		if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("got %v, want domain.ErrNotFound", err)
		}
	}
	if calls != 2 {
		t.Errorf("storage hit %d times, want 2: absence must not be cached", calls)
	}
	if len(cache.entities) != 0 {
		t.Errorf("absence cached: %+v", cache.entities)
	}
}

func TestGetByID_CacheReadErrorDegradesToStorage(t *testing.T) {
	repo := &repoMock{
		getFunc: func(_ context.Context, id string) (domwork.Work, error) {
			return domwork.Work{ID: id}, nil
		},
	}
	cache := newMemCache()
	cache.getErr = errors.New("connection refused")
	svc := New(repo, cache, cache)

	w, err := svc.GetByID(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("cache failure must not fail the read: %v", err)
	}
	if w.ID != "w-1" {
		t.Errorf("unexpected work: %+v", w)
	}
}

func TestGetByID_CacheWriteErrorIgnored(t *testing.T) {
	repo := &repoMock{
		getFunc: func(_ context.Context, id string) (domwork.Work, error) {
			return domwork.Work{ID: id}, nil
		},
	}
	cache := newMemCache()
	cache.setErr = errors.New("connection refused")
	svc := New(repo, cache, cache)

	if _, err := svc.GetByID(context.Background(), "w-1"); err != nil {
		t.Fatalf("populate failure must not fail the read: %v", err)
	}
}

func TestSearch_EmptyResultCached(t *testing.T) {
	calls := 0
	repo := &repoMock{
		searchFunc: func(_ context.Context, _ query.Spec) ([]domwork.Work, error) {
			calls++
			return []domwork.Work{}, nil
		},
	}
	cache := newMemCache()
	svc := New(repo, cache, cache)

	p := search.Params{Query: "zzz", Page: 1, Size: 10}
	for i := 0; i < 2; i++ {
		items, err := svc.Search(context.Background(), p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("unexpected items: %+v", items)
		}
	}
	if calls != 1 {
		t.Errorf("storage hit %d times, want 1: empty pages are cacheable", calls)
	}
}

func TestSearch_ReturnsPreviews(t *testing.T) {
	repo := &repoMock{
		searchFunc: func(_ context.Context, spec query.Spec) ([]domwork.Work, error) {
			if spec.Offset != 10 || spec.Limit != 10 {
				t.Errorf("unexpected paging: %+v", spec)
			}
			return []domwork.Work{
				{ID: "w-1", Title: "A", Rating: 8.1, Cast: []domwork.ContributorRef{{ID: "p-1", FullName: "Someone"}}},
			}, nil
		},
	}
	cache := newMemCache()
	svc := New(repo, cache, cache)

	items, err := svc.Search(context.Background(), search.Params{Query: "a", Page: 2, Size: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "w-1" || items[0].Rating != 8.1 {
		t.Errorf("unexpected previews: %+v", items)
	}
}

func TestSearch_InvalidParams(t *testing.T) {
	repo := &repoMock{
		searchFunc: func(_ context.Context, _ query.Spec) ([]domwork.Work, error) {
			t.Fatal("storage must not be reached for invalid params")
			return nil, nil
		},
	}
	cache := newMemCache()
	svc := New(repo, cache, cache)

	if _, err := svc.Search(context.Background(), search.Params{Page: 0, Size: 10}); !errors.Is(err, domain.ErrMalformedQuery) {
		t.Errorf("got %v, want domain.ErrMalformedQuery", err)
	}
}

func TestList_IgnoresFreeText(t *testing.T) {
	var gotSpec query.Spec
	repo := &repoMock{
		searchFunc: func(_ context.Context, spec query.Spec) ([]domwork.Work, error) {
			gotSpec = spec
			return nil, nil
		},
	}
	cache := newMemCache()
	svc := New(repo, cache, cache)

	if _, err := svc.List(context.Background(), search.Params{Query: "stray text", Page: 1, Size: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSpec.Query != "*" {
		t.Errorf("listing must ignore free text, got query %q", gotSpec.Query)
	}
}

func TestList_DistinctPagesDistinctKeys(t *testing.T) {
	repo := &repoMock{
		searchFunc: func(_ context.Context, spec query.Spec) ([]domwork.Work, error) {
			return []domwork.Work{{ID: "w", Title: "t"}}, nil
		},
	}
	cache := newMemCache()
	svc := New(repo, cache, cache)

	if _, err := svc.List(context.Background(), search.Params{Page: 1, Size: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.List(context.Background(), search.Params{Page: 2, Size: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.lists) != 2 {
		t.Errorf("expected 2 cached pages, got %d", len(cache.lists))
	}
}
