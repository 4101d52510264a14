package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/jengzang/recurse-backend-go/internal/database"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}
