package database_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cibaria/backend/config"
	"github.com/pageza/cibaria/backend/internal/database"
	"github.com/pageza/cibaria/backend/internal/models"
	"github.com/pageza/cibaria/backend/internal/testhelpers"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "cibaria",
		DBPassword: "secret",
		DBName:     "catalog",
	}
	assert.Equal(t, "host=db port=5433 user=cibaria password=secret dbname=catalog sslmode=disable", database.DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, database.DSN(cfg), "sslmode=require")
}

func TestRunMigrationsSQLite(t *testing.T) {
	db := testhelpers.SetupSQLite(t)

	require.NoError(t, database.RunMigrations(db, "does-not-matter", zerolog.Nop()))
	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestRunMigrationsMissingDir(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	err := database.RunMigrations(db, filepath.Join(t.TempDir(), "missing"), zerolog.Nop())
	assert.ErrorContains(t, err, "failed to read migrations directory")
}

func TestMigrationsApplyOnceAndRollback(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	dir := testhelpers.MigrationsDir()

	// SetupTestDatabase already applied everything; a second run is a no-op.
	require.NoError(t, database.RunMigrations(db, dir, zerolog.Nop()))
	var applied int64
	require.NoError(t, db.Table("migrations").Count(&applied).Error)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(len(entries)/2), applied)

	require.NoError(t, database.RollbackLast(db, dir, zerolog.Nop()))
	assert.False(t, db.Migrator().HasTable("recipes"))

	require.NoError(t, database.RunMigrations(db, dir, zerolog.Nop()))
	assert.True(t, db.Migrator().HasTable("recipes"))
}

func TestOpenUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping connection timeout test in short mode")
	}
	start := time.Now()
	_, err := database.Open("host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 15*time.Second)
}

func TestHealthCheck(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	assert.NoError(t, db.HealthCheck(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, db.HealthCheck(context.Background()))
}
