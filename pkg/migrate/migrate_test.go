package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
	require.NoError(t, ValidateDir("migrations"))
}

func TestCustomerOrdersMigrationEnforcesMergeKey(t *testing.T) {
	matches, err := fs.Glob(embedded, "migrations/*_create_customer_orders_table.sql")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := fs.ReadFile(embedded, matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS customer_orders",
		"CONSTRAINT customer_orders_order_id_key UNIQUE (order_id)",
		"line_total_cents bigint",
		"revision bigint NOT NULL DEFAULT 1",
		"CREATE INDEX IF NOT EXISTS idx_customer_orders_customer_email",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_missing_down.sql"), []byte("-- +goose Up\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Notes!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_order_notes.sql"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)

	_, err = createSQLMigration(dir, "add order notes", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorContains(t, err, "already exists")
}

func TestMaybeRunDevAutoMigratesSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	client := db.NewFromGorm(conn)

	cfg := &config.Config{App: config.AppConfig{Env: "prod"}}
	logg := logger.New(logger.Options{ServiceName: "migrate-test", Output: os.Stderr})
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logg, client))

	for _, table := range []string{"customers", "products", "customer_orders"} {
		require.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}
}
