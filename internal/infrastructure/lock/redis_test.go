package lock

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	l, err := NewRedis(context.Background(), RedisOptions{Addr: srv.Addr(), TTL: ttl}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l, srv
}

func TestRedisExcludesSecondHolder(t *testing.T) {
	t.Parallel()

	l, srv := newTestRedis(t, time.Minute)
	ctx := context.Background()

	release, ok, err := l.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}
	if !srv.Exists(DefaultKey) {
		t.Fatalf("lease key %q not set", DefaultKey)
	}
	if ttl := srv.TTL(DefaultKey); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("lease ttl = %v", ttl)
	}

	if _, ok, err := l.TryAcquire(ctx); err != nil || ok {
		t.Fatalf("second acquire = %v, %v; want refused", ok, err)
	}

	release()
	if srv.Exists(DefaultKey) {
		t.Fatal("release left the lease key behind")
	}

	release2, ok, err := l.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after release = %v, %v", ok, err)
	}
	release2()
}

func TestRedisStaleReleaseKeepsNewLease(t *testing.T) {
	t.Parallel()

	l, srv := newTestRedis(t, time.Second)
	ctx := context.Background()

	stale, ok, err := l.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}

	srv.FastForward(2 * time.Second)
	if srv.Exists(DefaultKey) {
		t.Fatal("lease did not expire")
	}

	current, ok, err := l.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after expiry = %v, %v", ok, err)
	}
	token, err := srv.Get(DefaultKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	stale()
	if got, err := srv.Get(DefaultKey); err != nil || got != token {
		t.Fatalf("stale release touched the new lease: %q, %v", got, err)
	}

	current()
	if srv.Exists(DefaultKey) {
		t.Fatal("owner release did not delete the lease")
	}
}

func TestRedisAcquireFailsWhenServerDown(t *testing.T) {
	t.Parallel()

	l, srv := newTestRedis(t, time.Minute)
	srv.Close()

	if _, ok, err := l.TryAcquire(context.Background()); err == nil || ok {
		t.Fatalf("acquire against closed server = %v, %v; want error", ok, err)
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	if _, err := NewRedis(context.Background(), RedisOptions{Addr: addr}, nil); err == nil {
		t.Fatal("expected connection error")
	}
}
