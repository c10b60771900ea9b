package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cinedex-cloud/cinedex/internal/db"
)

type kvMock struct {
	getFunc func(ctx context.Context, key string) ([]byte, error)
	setFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *kvMock) Get(ctx context.Context, key string) ([]byte, error) {
	return m.getFunc(ctx, key)
}

func (m *kvMock) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.setFunc(ctx, key, value, ttl)
}

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestGet_Hit(t *testing.T) {
	store := &kvMock{
		getFunc: func(_ context.Context, key string) ([]byte, error) {
			if key != "item:get:id=1" {
				t.Errorf("unexpected key: %s", key)
			}
			return []byte(`{"id":"1","name":"one"}`), nil
		},
	}
	c := New[item](store, time.Minute)

	got, err := c.Get(context.Background(), "item:get:id=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "1" || got.Name != "one" {
		t.Errorf("unexpected value: %+v", got)
	}
}

func TestGet_Miss(t *testing.T) {
	store := &kvMock{
		getFunc: func(_ context.Context, _ string) ([]byte, error) {
			return nil, db.ErrKeyNotFound
		},
	}
	c := New[item](store, time.Minute)

	got, err := c.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("miss must not be an error, got %v", err)
	}
	if got != nil {
		t.Errorf("miss must return nil, got %+v", got)
	}
}

func TestGet_StoreError(t *testing.T) {
	storeErr := errors.New("connection reset")
	store := &kvMock{
		getFunc: func(_ context.Context, _ string) ([]byte, error) {
			return nil, storeErr
		},
	}
	c := New[item](store, time.Minute)

	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, storeErr) {
		t.Errorf("store error not propagated, got %v", err)
	}
}

func TestSet_UsesConfiguredTTL(t *testing.T) {
	var gotTTL time.Duration
	var gotValue []byte
	store := &kvMock{
		setFunc: func(_ context.Context, _ string, value []byte, ttl time.Duration) error {
			gotTTL = ttl
			gotValue = value
			return nil
		},
	}
	c := New[item](store, 5*time.Minute)

	if err := c.Set(context.Background(), "k", item{ID: "1", Name: "one"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", gotTTL)
	}
	if string(gotValue) != `{"id":"1","name":"one"}` {
		t.Errorf("unexpected payload: %s", gotValue)
	}
}

func TestList_EmptyRoundTrip(t *testing.T) {
	// An empty result set cached as [] must come back as a present empty
	// list, not as a miss.
	var stored []byte
	store := &kvMock{
		setFunc: func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			stored = value
			return nil
		},
		getFunc: func(_ context.Context, _ string) ([]byte, error) {
			return stored, nil
		},
	}
	c := New[item](store, time.Minute)

	if err := c.SetList(context.Background(), "k", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(stored) != "[]" {
		t.Errorf("nil list stored as %s, want []", stored)
	}

	items, err := c.GetList(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil {
		t.Fatal("cached empty list read back as a miss")
	}
	if len(items) != 0 {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestGetList_Miss(t *testing.T) {
	store := &kvMock{
		getFunc: func(_ context.Context, _ string) ([]byte, error) {
			return nil, db.ErrKeyNotFound
		},
	}
	c := New[item](store, time.Minute)

	items, err := c.GetList(context.Background(), "k")
	if err != nil {
		t.Fatalf("miss must not be an error, got %v", err)
	}
	if items != nil {
		t.Errorf("miss must return nil slice, got %+v", items)
	}
}

func TestCounter(t *testing.T) {
	var stored []byte
	store := &kvMock{
		setFunc: func(_ context.Context, _ string, value []byte, ttl time.Duration) error {
			if ttl != time.Hour {
				t.Errorf("ttl = %v, want 1h", ttl)
			}
			stored = value
			return nil
		},
		getFunc: func(_ context.Context, _ string) ([]byte, error) {
			if stored == nil {
				return nil, db.ErrKeyNotFound
			}
			return stored, nil
		},
	}
	c := NewCounter(store, time.Hour)

	_, ok, err := c.Get(context.Background(), "k")
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(context.Background(), "k", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok, err := c.Get(context.Background(), "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if n != 42 {
		t.Errorf("got %d, want 42", n)
	}
}
