package catalog

import (
	"context"
	"errors"
	"testing"

	apperrors "support-bot/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSource_Load(t *testing.T) {
	mr, client := newMiniRedis(t)
	require.NoError(t, mr.Set("support-bot:catalog", validJSON))

	src := NewRedisSource(client, "support-bot:catalog", "")
	cat, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"greeting", "goodbye"}, cat.Tags())
	assert.Equal(t, "redis:support-bot:catalog", src.Name())
}

func TestRedisSource_YAML(t *testing.T) {
	mr, client := newMiniRedis(t)
	require.NoError(t, mr.Set("cat", validYAML))

	cat, err := NewRedisSource(client, "cat", FormatYAML).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestRedisSource_Missing(t *testing.T) {
	_, client := newMiniRedis(t)

	_, err := NewRedisSource(client, "absent", FormatJSON).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCatalogNotFound, apperrors.CodeOf(err))
}

func TestRedisSource_Malformed(t *testing.T) {
	mr, client := newMiniRedis(t)
	require.NoError(t, mr.Set("cat", "not json"))

	_, err := NewRedisSource(client, "cat", FormatJSON).Load(context.Background())
	assert.Equal(t, apperrors.ErrCodeCatalogMalformed, apperrors.CodeOf(err))
}

func TestRedisSource_SaveThenLoad(t *testing.T) {
	_, client := newMiniRedis(t)
	want, err := Default()
	require.NoError(t, err)

	src := NewRedisSource(client, "cat", FormatJSON)
	require.NoError(t, src.Save(context.Background(), want, 0))

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisSource_ConnectionError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("cat").SetErr(errors.New("connection refused"))

	_, err := NewRedisSource(client, "cat", FormatJSON).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCatalogSourceFailed, apperrors.CodeOf(err))
	assert.True(t, apperrors.Normalize(err).Retryable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSource_NilReply(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("cat").RedisNil()

	_, err := NewRedisSource(client, "cat", FormatJSON).Load(context.Background())
	assert.Equal(t, apperrors.ErrCodeCatalogNotFound, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
