package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/pkg/db"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, Validate())
}

func TestPostgresMigrationContainsSchema(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/postgres/20240601120000_create_purchase_orders.sql")
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS purchase_orders",
		"CREATE TABLE IF NOT EXISTS purchase_order_lines",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_purchase_orders_order_number",
		"ON DELETE CASCADE",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestDirRejectsUnknownDriver(t *testing.T) {
	_, err := Dir("mysql")
	assert.Error(t, err)
}

func TestMaybeRunAppliesSQLiteMigrations(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{
		Driver:       db.DriverSQLite,
		DSN:          "file:migrate_test?mode=memory&cache=shared",
		MaxOpenConns: 1,
		AutoMigrate:  true,
	}
	client, err := db.New(ctx, cfg, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, MaybeRun(ctx, cfg, nil, client))
	assert.True(t, client.DB().Migrator().HasTable("purchase_orders"))
	assert.True(t, client.DB().Migrator().HasTable("purchase_order_lines"))

	sqlDB, err := client.SQL()
	require.NoError(t, err)
	require.NoError(t, Run(ctx, sqlDB, db.DriverSQLite, "down"))
	assert.False(t, client.DB().Migrator().HasTable("purchase_orders"))
}

func TestMaybeRunDisabled(t *testing.T) {
	require.NoError(t, MaybeRun(context.Background(), config.DBConfig{}, nil, nil))
}
