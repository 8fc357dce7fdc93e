package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

const (
	defaultCacheTTL = time.Hour
	cacheOpTimeout  = 5 * time.Second
)

var (
	ErrCacheUnavailable = errors.New("cache client not configured")
	errCacheKeyRequired = errors.New("cache key is required")
)

type KeyType interface {
	string | uuid.UUID
}

// CacheBuilder composes a single valkey read, write or delete. A builder
// without a client carries ErrCacheUnavailable so callers degrade to a miss.
type CacheBuilder struct {
	cache   valkey.Client
	ctx     context.Context
	key     string
	payload string
	ttl     time.Duration
	err     error
}

func NewCacheBuilder[K KeyType](cache valkey.Client, key K) *CacheBuilder {
	builder := &CacheBuilder{
		cache: cache,
		ctx:   context.Background(),
		ttl:   defaultCacheTTL,
	}

	switch k := any(key).(type) {
	case string:
		builder.key = k
	case uuid.UUID:
		builder.key = k.String()
	}

	if cache == nil {
		builder.err = ErrCacheUnavailable
	}

	return builder
}

func (cb *CacheBuilder) WithStruct(value any) *CacheBuilder {
	encoded, err := json.Marshal(value)
	if err != nil {
		cb.err = fmt.Errorf("failed to encode cache payload: %w", err)
		return cb
	}

	cb.payload = string(encoded)
	return cb
}

// WithHash namespaces the key as "<hash>:<key>".
func (cb *CacheBuilder) WithHash(hash string) *CacheBuilder {
	if hash != "" {
		cb.key = hash + ":" + cb.key
	}
	return cb
}

func (cb *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	cb.ttl = ttl
	return cb
}

func (cb *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	cb.ctx = ctx
	return cb
}

func (cb *CacheBuilder) Set() error {
	if err := cb.ready(); err != nil {
		return err
	}
	if cb.payload == "" {
		return fmt.Errorf("cache payload is required for %s", cb.key)
	}

	ctx, cancel := cb.opContext()
	defer cancel()

	cmd := cb.cache.B().Set().Key(cb.key).Value(cb.payload).Ex(cb.ttl).Build()
	return cb.cache.Do(ctx, cmd).Error()
}

// Get decodes the cached payload into result. A missing key is a miss, not
// an error.
func (cb *CacheBuilder) Get(result any) (bool, error) {
	if err := cb.ready(); err != nil {
		return false, err
	}

	ctx, cancel := cb.opContext()
	defer cancel()

	data, err := cb.cache.Do(ctx, cb.cache.B().Get().Key(cb.key).Build()).ToString()
	switch {
	case isKeyNotFoundError(err):
		return false, nil
	case err != nil:
		return false, err
	case data == "":
		return false, nil
	}

	if err := json.Unmarshal([]byte(data), result); err != nil {
		return false, fmt.Errorf("failed to decode cache payload for %s: %w", cb.key, err)
	}
	return true, nil
}

func (cb *CacheBuilder) Delete() error {
	if err := cb.ready(); err != nil {
		return err
	}

	ctx, cancel := cb.opContext()
	defer cancel()

	return cb.cache.Do(ctx, cb.cache.B().Del().Key(cb.key).Build()).Error()
}

func (cb *CacheBuilder) ready() error {
	if cb.err != nil {
		return cb.err
	}
	if cb.key == "" {
		return errCacheKeyRequired
	}
	return nil
}

// opContext bounds a cache call to cacheOpTimeout unless the caller's
// deadline is already tighter.
func (cb *CacheBuilder) opContext() (context.Context, context.CancelFunc) {
	if deadline, ok := cb.ctx.Deadline(); ok && time.Until(deadline) < cacheOpTimeout {
		return context.WithCancel(cb.ctx)
	}
	return context.WithTimeout(cb.ctx, cacheOpTimeout)
}

func isKeyNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return valkey.IsValkeyNil(err) || strings.Contains(err.Error(), "key not found")
}

// IsCacheUnavailable lets callers skip logging for deployments without valkey.
func IsCacheUnavailable(err error) bool {
	return errors.Is(err, ErrCacheUnavailable)
}
