package fstree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safing/biodb/storage/storagetest"
)

func TestFSTree(t *testing.T) {
	t.Parallel()

	db, err := NewFSTree("test", t.TempDir())
	require.NoError(t, err)
	storagetest.Run(t, db)
}
