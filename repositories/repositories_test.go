package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a throwaway Badger instance backed by the test's temp dir.
func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	options := badger.DefaultOptions(t.TempDir()).WithLogger(nil)
	db, err := badger.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
