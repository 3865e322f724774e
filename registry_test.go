package giftid

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func newTestRedisRegistry(t *testing.T, mr *miniredis.Miniredis) *RedisRegistry {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRegistry(client, "giftid-test:", 2*time.Second, 50*time.Millisecond)
}

func TestRedisRegistryLeaseGrantsUniqueWorkshopID(t *testing.T) {
	registry := newTestRedisRegistry(t, newTestMiniredis(t))

	lease, err := registry.Lease(context.Background(), 7)
	if err != nil {
		t.Fatalf("Lease() error = %v", err)
	}
	defer lease.Release(context.Background())

	if lease.WorkshopID != 7 {
		t.Errorf("lease.WorkshopID = %d, want 7", lease.WorkshopID)
	}
}

func TestRedisRegistryRejectsConflictingLease(t *testing.T) {
	mr := newTestMiniredis(t)
	registryA := newTestRedisRegistry(t, mr)
	registryB := newTestRedisRegistry(t, mr)

	first, err := registryA.Lease(context.Background(), 7)
	if err != nil {
		t.Fatalf("first Lease() error = %v", err)
	}
	defer first.Release(context.Background())

	if _, err := registryB.Lease(context.Background(), 7); err == nil {
		t.Fatal("second Lease() expected conflict error, got nil")
	} else if _, ok := err.(*WorkshopIDConflictError); !ok {
		t.Errorf("second Lease() error = %v, want *WorkshopIDConflictError", err)
	}
}

func TestRedisRegistryReleaseFreesWorkshopID(t *testing.T) {
	registry := newTestRedisRegistry(t, newTestMiniredis(t))

	lease, err := registry.Lease(context.Background(), 9)
	if err != nil {
		t.Fatalf("Lease() error = %v", err)
	}
	if err := lease.Release(context.Background()); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	second, err := registry.Lease(context.Background(), 9)
	if err != nil {
		t.Fatalf("Lease() after release error = %v", err)
	}
	defer second.Release(context.Background())
}

func TestNoopRegistryNeverConflicts(t *testing.T) {
	registry := NoopRegistry{}
	a, err := registry.Lease(context.Background(), 1)
	if err != nil {
		t.Fatalf("Lease() error = %v", err)
	}
	b, err := registry.Lease(context.Background(), 1)
	if err != nil {
		t.Fatalf("second Lease() error = %v", err)
	}
	_ = a.Release(context.Background())
	_ = b.Release(context.Background())
}
