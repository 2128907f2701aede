package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"pantry/internal/core"
	"pantry/internal/store"
)

type countingStore struct {
	mu    sync.Mutex
	doc   core.Document
	loads int
	saves int
}

func (s *countingStore) Load(context.Context) (core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.doc.Clone(), nil
}

func (s *countingStore) Save(_ context.Context, doc core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.doc = doc.Clone()
	return nil
}

func TestCachedLoadHitsInnerOnce(t *testing.T) {
	inner := &countingStore{doc: core.DefaultDocument(3)}
	c := store.NewCached(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := c.Load(ctx); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
	}
	if inner.loads != 1 {
		t.Fatalf("inner loads = %d, want 1", inner.loads)
	}
}

func TestCachedSaveWritesThroughAndRefreshes(t *testing.T) {
	inner := &countingStore{doc: core.DefaultDocument(3)}
	c := store.NewCached(inner, time.Minute)
	ctx := context.Background()

	doc, _ := c.Load(ctx)
	doc.Points = 777
	if err := c.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	if inner.saves != 1 {
		t.Fatalf("inner saves = %d, want 1", inner.saves)
	}

	got, _ := c.Load(ctx)
	if got.Points != 777 {
		t.Fatalf("cached load after save: points = %d, want 777", got.Points)
	}
	if inner.loads != 1 {
		t.Fatalf("load after save should be served from cache, inner loads = %d", inner.loads)
	}
}

func TestCachedLoadReturnsCopies(t *testing.T) {
	inner := &countingStore{doc: core.DefaultDocument(3)}
	c := store.NewCached(inner, time.Minute)
	ctx := context.Background()

	first, _ := c.Load(ctx)
	first.Inventory[0].Name = "scribbled"

	second, _ := c.Load(ctx)
	if second.Inventory[0].Name == "scribbled" {
		t.Fatal("caller mutation must not leak into the cache")
	}
}

func TestCachedExpiryReloads(t *testing.T) {
	inner := &countingStore{doc: core.DefaultDocument(3)}
	c := store.NewCached(inner, -time.Second)
	ctx := context.Background()

	c.Load(ctx)
	c.Load(ctx)
	if inner.loads != 2 {
		t.Fatalf("expired cache must reload, inner loads = %d", inner.loads)
	}
}
