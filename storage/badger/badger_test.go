package badger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safing/biodb/storage/storagetest"
)

func TestBadger(t *testing.T) {
	t.Parallel()

	db, err := NewBadger("test", t.TempDir())
	require.NoError(t, err)
	storagetest.Run(t, db)
}
