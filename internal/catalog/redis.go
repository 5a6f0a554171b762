package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"support-bot/internal/common/errors"
	"support-bot/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads a whole catalog document stored under a single key.
type RedisSource struct {
	client redis.Cmdable
	key    string
	format Format
}

func NewRedisSource(client redis.Cmdable, key string, format Format) *RedisSource {
	if format == "" {
		format = FormatJSON
	}
	return &RedisSource{client: client, key: key, format: format}
}

func (s *RedisSource) Name() string { return "redis:" + s.key }

func (s *RedisSource) Load(ctx context.Context) (*models.Catalog, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, errors.NewCatalogNotFoundError(s.Name(), nil)
		}
		return nil, errors.NewCatalogSourceFailedError(s.Name(), err)
	}
	return Parse(data, s.format, s.Name())
}

// Save validates cat and stores it under the source key. A zero ttl keeps it
// until overwritten.
func (s *RedisSource) Save(ctx context.Context, cat *models.Catalog, ttl time.Duration) error {
	if err := Validate(cat); err != nil {
		return err
	}
	data, err := Encode(cat, s.format)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return errors.NewCatalogSourceFailedError(s.Name(), err)
	}
	return nil
}
