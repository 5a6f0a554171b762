// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-bot/internal/bootstrap"
	"support-bot/internal/catalog"
	"support-bot/internal/common/camunda"
	"support-bot/internal/common/config"
	"support-bot/internal/common/database"
	"support-bot/internal/common/logger"
	"support-bot/internal/dialogue"
	"support-bot/internal/models"
	gr "support-bot/internal/workers/dialogue/get-response"
)

const catalogTable = "e2e_intent_phrases"

func TestMain(m *testing.M) {
	if os.Getenv("SUPPORTBOT_E2E") == "" {
		// Needs Redis on :6379, PostgreSQL on :5432 and Zeebe on :26500.
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Postgres.Database = "support_bot"
	cfg.Database.Postgres.User = "postgres"
	cfg.Database.Postgres.Password = os.Getenv("POSTGRES_PASSWORD")
	cfg.Camunda.BrokerAddress = "localhost:26500"
	cfg.Catalog.Table = catalogTable
	return cfg
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := localConfig(t)
	log := logger.NewTestLogger(t)

	t.Log("🚀 Starting E2E test with real services...")

	want, err := catalog.Default()
	require.NoError(t, err)

	seedRedis(ctx, t, cfg, want)
	seedPostgres(ctx, t, cfg, want)

	for _, source := range []string{config.SourceRedis, config.SourcePostgres} {
		cfg.Catalog.Source = source
		cat, release, err := bootstrap.OpenCatalog(ctx, cfg, log)
		require.NoError(t, err, source)
		release()
		assert.Equal(t, want, cat, source)
		t.Logf("✅ Catalog loaded from %s", source)
	}

	client, err := camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda))
	require.NoError(t, err, "❌ Zeebe connection failed")
	defer client.Close()
	t.Log("✅ Zeebe connected")

	conversation(ctx, t, cfg, want)
	t.Log("✅ E2E test passed")
}

func seedRedis(ctx context.Context, t *testing.T, cfg *config.Config, cat *models.Catalog) {
	rdb, err := database.NewRedis(ctx, cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis connection failed")
	defer rdb.Close()

	format, err := catalog.ParseFormat(cfg.Catalog.Format)
	require.NoError(t, err)
	src := catalog.NewRedisSource(rdb.Client, cfg.Catalog.RedisKey, format)
	require.NoError(t, src.Save(ctx, cat, 0))
	t.Log("✅ Redis seeded")
}

func seedPostgres(ctx context.Context, t *testing.T, cfg *config.Config, cat *models.Catalog) {
	pg, err := database.NewPostgres(ctx, cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	defer pg.Close()

	_, err = pg.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+catalogTable+` (
		intent_position INT  NOT NULL,
		intent_tag      TEXT NOT NULL,
		kind            TEXT NOT NULL CHECK (kind IN ('pattern', 'response')),
		position        INT  NOT NULL,
		body            TEXT NOT NULL
	)`)
	require.NoError(t, err)

	src, err := catalog.NewPostgresSource(pg.DB, catalogTable)
	require.NoError(t, err)
	require.NoError(t, src.Save(ctx, cat))
	t.Log("✅ PostgreSQL seeded")
}

// conversation runs turns through the job handler with the English dictionary loaded.
func conversation(ctx context.Context, t *testing.T, cfg *config.Config, cat *models.Catalog) {
	proto, err := bootstrap.NewEngine(cfg, cat, logger.NewTestLogger(t), dialogue.WithChooser(dialogue.FirstChooser{}))
	require.NoError(t, err)
	sessions := bootstrap.NewSessions(cfg.Engine, proto, logger.NewTestLogger(t))
	h := gr.NewHandler(gr.LoadConfig(cfg), sessions, nil, logger.NewTestLogger(t))

	out, err := h.Execute(ctx, &gr.Input{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "greeting", out.Intent)

	// "returns" lemmatizes to "return", as does the catalog pattern.
	out, err = h.Execute(ctx, &gr.Input{SessionId: out.SessionId, Message: "Returns policy"})
	require.NoError(t, err)
	assert.Equal(t, "returns", out.Intent)

	out, err = h.Execute(ctx, &gr.Input{SessionId: out.SessionId, Message: "Where is my order number AB12CD34?"})
	require.NoError(t, err)
	assert.Equal(t, "order_status", out.Intent)
	assert.True(t, out.Augmented)
	assert.Equal(t, []string{"greeting", "returns"}, out.Context.PreviousIntents)
}
