package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwash/internal/config"
	"carwash/internal/modules/catalog"
	"carwash/internal/testutil"
)

func TestPrepareDatabaseOnEmptySchema(t *testing.T) {
	db := testutil.OpenSchema(t)
	ctx := context.Background()

	root, err := testutil.RepoRoot()
	require.NoError(t, err)

	var cfg config.Config
	cfg.DB.Migrate = true
	cfg.DB.MigrationDir = filepath.Join(root, "migrations")
	cfg.Catalog.Seed = true

	logger := log.New()
	logger.SetOutput(io.Discard)
	catalogSvc := catalog.NewService(catalog.NewStore(db), nil, logger)

	require.NoError(t, prepareDatabase(ctx, cfg, db, catalogSvc, logger))
	// Second start against the same database is a no-op.
	require.NoError(t, prepareDatabase(ctx, cfg, db, catalogSvc, logger))

	cat, err := catalogSvc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, cat, len(catalog.Default()))

	var orders int
	require.NoError(t, db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orders))
	assert.Zero(t, orders)
}

func TestPrepareDatabaseWithoutMigrationsFailsSeed(t *testing.T) {
	db := testutil.OpenSchema(t)
	logger := log.New()
	logger.SetOutput(io.Discard)

	var cfg config.Config
	cfg.Catalog.Seed = true
	err := prepareDatabase(context.Background(), cfg, db, catalog.NewService(catalog.NewStore(db), nil, logger), logger)
	assert.ErrorContains(t, err, "seed catalog")
}
