package giftid

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Registry is an advisory, best-effort workshop-ID collision detector.
// It is never consulted by New or NewWithConfig: a generator always
// starts issuing IDs immediately with the workshop ID it was given.
// Registering and heartbeating only lets an operator catch two
// processes configured with the same workshop ID before they silently
// collide.
type Registry interface {
	// Lease advertises workshopID as held by this process, returning an
	// error if another live process already holds it. The caller should
	// keep the returned Lease running (via its background heartbeat)
	// for the generator's lifetime and Release it on shutdown.
	Lease(ctx context.Context, workshopID uint16) (*Lease, error)
}

// Lease represents a held workshop-ID registration.
type Lease struct {
	WorkshopID uint16
	Release    func(ctx context.Context) error
}

// NoopRegistry never conflicts and never leases anything; it is the
// default when no registry backend is configured, matching spec.md's
// "no cross-instance coordination required" non-goal.
type NoopRegistry struct{}

// Lease implements Registry by granting every request immediately.
func (NoopRegistry) Lease(_ context.Context, workshopID uint16) (*Lease, error) {
	return &Lease{
		WorkshopID: workshopID,
		Release:    func(context.Context) error { return nil },
	}, nil
}

// WorkshopIDConflictError is returned by RedisRegistry.Lease when
// another live instance already holds the requested workshop ID.
type WorkshopIDConflictError struct {
	WorkshopID uint16
}

func (e *WorkshopIDConflictError) Error() string {
	return fmt.Sprintf("giftid: workshop id %d is already leased by another instance", e.WorkshopID)
}

// leaseHeartbeatScript atomically verifies this instance still owns
// the lease before refreshing its TTL, so a heartbeat from a lease that
// lost a race never clobbers the winner's key.
const leaseHeartbeatScript = `
local current = redis.call('GET', KEYS[1])
if not current then
	return -1
end
local instanceId = string.match(current, '"instance_id":"([^"]+)"')
if not instanceId then
	return -2
end
if instanceId ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[3])
return 1
`

// RedisRegistry leases workshop IDs against a shared Redis instance
// using SETNX for initial acquisition and a heartbeat Lua script
// (compare instance ID, then refresh TTL) to keep the lease alive. A
// heartbeat that finds the key gone or held by another instance leaves
// it untouched; the script's result is discarded and not reported.
type RedisRegistry struct {
	client     redis.UniversalClient
	keyPrefix  string
	ttl        time.Duration
	heartbeat  time.Duration
	instanceID string
}

// NewRedisRegistry builds a RedisRegistry. keyPrefix namespaces the
// registry's keys (e.g. "giftid:"); ttl and heartbeat default to 30s
// and 10s respectively when zero.
func NewRedisRegistry(client redis.UniversalClient, keyPrefix string, ttl, heartbeat time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if heartbeat <= 0 {
		heartbeat = 10 * time.Second
	}
	return &RedisRegistry{
		client:     client,
		keyPrefix:  keyPrefix,
		ttl:        ttl,
		heartbeat:  heartbeat,
		instanceID: uuid.NewString(),
	}
}

type workshopLeaseInfo struct {
	WorkshopID uint16 `json:"workshop_id"`
	InstanceID string `json:"instance_id"`
	LeasedAt   int64  `json:"leased_at"`
}

func (r *RedisRegistry) key(workshopID uint16) string {
	return fmt.Sprintf("%sworkshop:%d", r.keyPrefix, workshopID)
}

// Lease implements Registry.
func (r *RedisRegistry) Lease(ctx context.Context, workshopID uint16) (*Lease, error) {
	info := workshopLeaseInfo{
		WorkshopID: workshopID,
		InstanceID: r.instanceID,
		LeasedAt:   time.Now().Unix(),
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return nil, err
	}

	key := r.key(workshopID)
	ok, err := r.client.SetNX(ctx, key, string(payload), r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("giftid: redis setnx failed: %w", err)
	}
	if !ok {
		return nil, &WorkshopIDConflictError{WorkshopID: workshopID}
	}

	heartbeatCtx, cancel := context.WithCancel(context.Background())
	var stopped atomic.Bool
	go r.heartbeatLoop(heartbeatCtx, key, payload)

	release := func(releaseCtx context.Context) error {
		if stopped.CompareAndSwap(false, true) {
			cancel()
		}
		return r.client.Del(releaseCtx, key).Err()
	}

	return &Lease{WorkshopID: workshopID, Release: release}, nil
}

func (r *RedisRegistry) heartbeatLoop(ctx context.Context, key string, payload []byte) {
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			_, _ = r.client.Eval(callCtx, leaseHeartbeatScript, []string{key},
				string(payload), r.instanceID, int64(r.ttl.Seconds())).Result()
			cancel()
		}
	}
}
