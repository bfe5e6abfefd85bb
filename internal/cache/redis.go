// Package cache keeps resolved auth tokens in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

const tokenKeyPrefix = "authtoken:%s"

// DefaultTTL bounds how long a revoked token can outlive a missed eviction.
// Logout and -promote evict the user's entry explicitly; other changes to a
// user (e.g. a direct database update) show up once the entry expires.
const DefaultTTL = 5 * time.Minute

// Tokens is a cache-aside store of token key to user.
type Tokens struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// Connect parses addr (host:port or a redis:// URL) and pings the server.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func NewTokens(client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Tokens{client: client, ttl: ttl, log: log}
}

func tokenKey(key string) string {
	return fmt.Sprintf(tokenKeyPrefix, key)
}

// cachedUser is what gets stored; the password hash never leaves the database.
type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

func (t *Tokens) Get(ctx context.Context, key string) (*model.User, bool) {
	raw, err := t.client.Get(ctx, tokenKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			t.log.Warnw("token cache get", "error", err)
		}

		return nil, false
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		t.log.Warnw("token cache decode", "error", err)

		return nil, false
	}

	return &model.User{ID: cu.ID, Username: cu.Username, Email: cu.Email, IsStaff: cu.IsStaff}, true
}

func (t *Tokens) Set(ctx context.Context, key string, u *model.User) {
	raw, err := json.Marshal(cachedUser{ID: u.ID, Username: u.Username, Email: u.Email, IsStaff: u.IsStaff})
	if err != nil {
		return
	}
	if err := t.client.Set(ctx, tokenKey(key), raw, t.ttl).Err(); err != nil {
		t.log.Warnw("token cache set", "error", err)
	}
}

func (t *Tokens) Delete(ctx context.Context, key string) {
	if err := t.client.Del(ctx, tokenKey(key)).Err(); err != nil {
		t.log.Warnw("token cache delete", "error", err)
	}
}
