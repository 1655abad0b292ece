package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
)

func TestMemoryDeduper(t *testing.T) {
	d := NewMemoryDeduper(time.Minute)
	now := time.Unix(1000, 0)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	if !d.AcquireOnce(ctx, "add", "k1") {
		t.Fatal("first acquire should succeed")
	}
	if d.AcquireOnce(ctx, "add", "k1") {
		t.Fatal("duplicate acquire should fail")
	}
	if !d.AcquireOnce(ctx, "delete", "k1") {
		t.Fatal("scopes must be independent")
	}

	now = now.Add(2 * time.Minute)
	if !d.AcquireOnce(ctx, "add", "k1") {
		t.Fatal("expired key should be acquirable again")
	}
}

type fakeSetNX struct {
	seen map[string]bool
	err  error
}

func (f *fakeSetNX) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if f.seen[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.seen[key] = true
	return redis.NewBoolResult(true, nil)
}

func TestRedisDeduper(t *testing.T) {
	fake := &fakeSetNX{seen: map[string]bool{}}
	d := newDeduper(fake, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	if !d.AcquireOnce(ctx, "add", "abc") {
		t.Fatal("first acquire")
	}
	if d.AcquireOnce(ctx, "add", "abc") {
		t.Fatal("duplicate acquire")
	}
	if !fake.seen["dedup:add:abc"] {
		t.Fatalf("unexpected keys %v", fake.seen)
	}
}

func TestRedisDeduperFailsOpen(t *testing.T) {
	d := newDeduper(&fakeSetNX{err: errors.New("connection refused")}, time.Minute, nil)
	if !d.AcquireOnce(context.Background(), "add", "abc") {
		t.Fatal("redis errors must not block submissions")
	}
}

func TestFormTokens(t *testing.T) {
	tokens := NewFormTokens("secret", time.Hour)
	tok, err := tokens.Issue()
	if err != nil {
		t.Fatal(err)
	}
	id, err := tokens.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id == "" {
		t.Fatal("empty token id")
	}

	other, _ := tokens.Issue()
	otherID, _ := tokens.Verify(other)
	if otherID == id {
		t.Fatal("token ids must differ")
	}
}

func TestFormTokensReject(t *testing.T) {
	tokens := NewFormTokens("secret", time.Hour)

	foreign, _ := NewFormTokens("other", time.Hour).Issue()
	expired, _ := NewFormTokens("secret", -time.Minute).Issue()
	wrongSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "login",
		ID:        "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))

	for name, tok := range map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"foreign":       foreign,
		"expired":       expired,
		"wrong subject": wrongSubject,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := tokens.Verify(tok); !errors.Is(err, ErrInvalidFormToken) {
				t.Fatalf("err = %v, want ErrInvalidFormToken", err)
			}
		})
	}
}

func TestFormTokensRandomSecret(t *testing.T) {
	a := NewFormTokens("", time.Hour)
	b := NewFormTokens("", time.Hour)
	tok, _ := a.Issue()
	if _, err := b.Verify(tok); err == nil {
		t.Fatal("random secrets should differ")
	}
}
