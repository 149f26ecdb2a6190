package gazcache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/geonames/gazetteer/internal/gazetteer"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client)
}

func TestByNameRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	got, err := c.GetByName(ctx, "Japan", gazetteer.Country)
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got != nil {
		t.Fatalf("expected cache miss, got %v", got)
	}

	want := map[int64]gazetteer.Location{
		1: {ID: 1, Resolution: gazetteer.Country, Name: "Japan"},
	}
	if err := c.SetByName(ctx, "Japan", gazetteer.Country, want); err != nil {
		t.Fatalf("SetByName: %v", err)
	}

	got, err = c.GetByName(ctx, "Japan", gazetteer.Country)
	if err != nil {
		t.Fatalf("GetByName after set: %v", err)
	}
	if len(got) != 1 || got[1].Name != "Japan" {
		t.Fatalf("unexpected cached result: %+v", got)
	}
}

func TestByIDRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, found, err := c.GetByID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found {
		t.Fatal("expected cache miss")
	}

	loc := gazetteer.Location{ID: 42, Resolution: gazetteer.City, Name: "Kyoto"}
	if err := c.SetByID(ctx, 42, loc); err != nil {
		t.Fatalf("SetByID: %v", err)
	}

	got, found, err := c.GetByID(ctx, 42)
	if err != nil {
		t.Fatalf("GetByID after set: %v", err)
	}
	if !found || got.Name != "Kyoto" {
		t.Fatalf("unexpected cached location: %+v found=%v", got, found)
	}
}

func TestFlush(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.SetByID(ctx, 1, gazetteer.Location{ID: 1}); err != nil {
		t.Fatalf("SetByID: %v", err)
	}
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	_, found, err := c.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID after flush: %v", err)
	}
	if found {
		t.Fatal("expected flush to remove cached entry")
	}
}
