package bbolt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safing/biodb/storage/storagetest"
)

func TestBBolt(t *testing.T) {
	t.Parallel()

	db, err := NewBBolt("test", t.TempDir())
	require.NoError(t, err)
	storagetest.Run(t, db)
}
