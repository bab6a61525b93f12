package presence_test

import (
	"context"
	"testing"
	"time"

	"booklend/service/presence"
)

type fakeCache struct {
	sets    map[string]map[string]bool
	expires int
}

func newFakeCache() *fakeCache { return &fakeCache{sets: map[string]map[string]bool{}} }

func (f *fakeCache) SAdd(ctx context.Context, set string, members ...string) {
	if f.sets[set] == nil {
		f.sets[set] = map[string]bool{}
	}
	for _, m := range members {
		f.sets[set][m] = true
	}
}
func (f *fakeCache) SRem(ctx context.Context, set, member string) {
	delete(f.sets[set], member)
}
func (f *fakeCache) SCard(ctx context.Context, set string) int64 {
	return int64(len(f.sets[set]))
}
func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) { f.expires++ }

func TestOnlinePresence(t *testing.T) {
	fc := newFakeCache()
	svc := presence.New(fc)
	ctx := context.Background()

	if n := svc.OnlineUserCount(ctx); n != 0 {
		t.Fatalf("empty set count = %d; want 0", n)
	}

	svc.AddOnlineUser(ctx, 1)
	svc.AddOnlineUser(ctx, 2)
	svc.AddOnlineUser(ctx, 2) // idempotent
	if n := svc.OnlineUserCount(ctx); n != 2 {
		t.Fatalf("count = %d; want 2", n)
	}

	// the TTL slides on every add
	if fc.expires != 3 {
		t.Fatalf("expire called %d times; want 3", fc.expires)
	}

	svc.RemoveOnlineUser(ctx, 1)
	if n := svc.OnlineUserCount(ctx); n != 1 {
		t.Fatalf("count after remove = %d; want 1", n)
	}
}
