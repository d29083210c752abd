package previewcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/internal/types"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
)

const (
	keyNamespace  = "occ"
	previewPrefix = "preview"
	defaultTTL    = 30 * time.Minute
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	GetDel(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Entry is a consolidated preview waiting to be committed.
type Entry struct {
	Token      string                     `json:"token"`
	CreatedAt  time.Time                  `json:"created_at"`
	MainFile   string                     `json:"main_file"`
	DetailFile string                     `json:"detail_file"`
	Records    []types.ConsolidatedRecord `json:"records"`
}

// Cache keeps previews in Redis until they are committed or expire.
type Cache struct {
	store cmdable
	raw   *redis.Client
	ttl   time.Duration
}

// New connects to Redis and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig) (*Cache, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{store: raw, raw: raw, ttl: ttlOrDefault(cfg.PreviewTTL)}, nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultTTL
	}
	return ttl
}

// TTL is how long a saved preview stays committable.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Save stores entry under a fresh token and returns the token.
func (c *Cache) Save(ctx context.Context, entry Entry) (string, error) {
	if c.store == nil {
		return "", errors.New("redis client not initialized")
	}
	entry.Token = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode preview")
	}
	if err := c.store.Set(ctx, c.PreviewKey(entry.Token), payload, c.ttl).Err(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store preview")
	}
	return entry.Token, nil
}

// Load returns the preview without consuming it.
func (c *Cache) Load(ctx context.Context, token string) (*Entry, error) {
	return c.fetch(ctx, token, false)
}

// Take returns the preview and deletes it, so a preview commits at most once.
func (c *Cache) Take(ctx context.Context, token string) (*Entry, error) {
	return c.fetch(ctx, token, true)
}

// Delete discards a preview.
func (c *Cache) Delete(ctx context.Context, token string) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Del(ctx, c.PreviewKey(token)).Err()
}

func (c *Cache) fetch(ctx context.Context, token string, consume bool) (*Entry, error) {
	if c.store == nil {
		return nil, errors.New("redis client not initialized")
	}
	if _, err := uuid.Parse(strings.TrimSpace(token)); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid preview token")
	}

	key := c.PreviewKey(token)
	var cmd *redis.StringCmd
	if consume {
		cmd = c.store.GetDel(ctx, key)
	} else {
		cmd = c.store.Get(ctx, key)
	}

	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "preview not found or expired")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load preview")
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode preview")
	}
	return &entry, nil
}

// PreviewKey returns the namespaced key of a preview token.
func (c *Cache) PreviewKey(token string) string {
	return strings.Join([]string{keyNamespace, previewPrefix, strings.TrimSpace(token)}, ":")
}

// Ping verifies the connection.
func (c *Cache) Ping(ctx context.Context) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Cache) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
