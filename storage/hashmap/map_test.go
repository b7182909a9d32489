package hashmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safing/biodb/storage/storagetest"
)

func TestHashMap(t *testing.T) {
	t.Parallel()

	db, err := NewHashMap("test", t.TempDir())
	require.NoError(t, err)
	storagetest.Run(t, db)
}
