package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisSharesSessionAcrossClients(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "backstage:ops:")
	b := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "backstage:ops:")

	if err := a.SetTokens(ctx, "access", "refresh"); err != nil {
		t.Fatalf("set tokens: %v", err)
	}
	if err := a.SetUser(ctx, &User{Email: "ops@label.example"}); err != nil {
		t.Fatalf("set user: %v", err)
	}

	s, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Token != "access" || s.RefreshToken != "refresh" || s.User == nil || s.User.Email != "ops@label.example" {
		t.Fatalf("unexpected shared session %#v", s)
	}
	if got, _ := mr.Get("backstage:ops:token"); got != "access" {
		t.Fatalf("expected prefixed key, got %q", got)
	}

	if err := b.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, k := range []string{KeyToken, KeyRefreshToken, KeyUser} {
		if mr.Exists("backstage:ops:" + k) {
			t.Fatalf("expected %s deleted", k)
		}
	}
	s, err = a.Load(ctx)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if s.LoggedIn() {
		t.Fatalf("expected logged out session")
	}
}

func TestNewRedisClientFailsFast(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisClient(context.Background(), RedisConfig{Addr: addr}); err == nil {
		t.Fatalf("expected ping failure against closed server")
	}
}
