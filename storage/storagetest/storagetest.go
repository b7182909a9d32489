// Package storagetest holds the conformance test shared by all storage backends.
package storagetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safing/biodb/storage"
)

// Run runs the conformance test against db. db must be empty.
func Run(t *testing.T, db storage.Interface) {
	t.Helper()

	// empty
	_, err := db.Get("seed/RF00001.sto")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	exists, err := db.Exists("seed/RF00001.sto")
	require.NoError(t, err)
	assert.False(t, exists)

	// put
	require.NoError(t, db.Put("seed/RF00002.sto", []byte("# STOCKHOLM 1.0\n#=GF AC   RF00002\n//\n")))
	require.NoError(t, db.Put("seed/RF00001.sto", []byte("first")))
	require.NoError(t, db.Put("full/RF00001.sto", []byte("full")))
	require.NoError(t, db.Put("CMs/RF00001.cm", []byte("INFERNAL1/a\n")))

	// overwrite
	require.NoError(t, db.Put("seed/RF00001.sto", []byte("# STOCKHOLM 1.0\n#=GF AC   RF00001\n//\n")))
	data, err := db.Get("seed/RF00001.sto")
	require.NoError(t, err)
	assert.Equal(t, "# STOCKHOLM 1.0\n#=GF AC   RF00001\n//\n", string(data))

	exists, err = db.Exists("seed/RF00001.sto")
	require.NoError(t, err)
	assert.True(t, exists)

	// keys
	keys, err := db.Keys("seed/")
	require.NoError(t, err)
	assert.Equal(t, []string{"seed/RF00001.sto", "seed/RF00002.sto"}, keys)
	keys, err = db.Keys("")
	require.NoError(t, err)
	assert.Len(t, keys, 4)
	keys, err = db.Keys("missing/")
	require.NoError(t, err)
	assert.Empty(t, keys)

	// prefixed view
	seed := &storage.Prefixed{DB: db, Prefix: "seed/", Extension: ".sto"}
	ids, err := seed.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"RF00001", "RF00002"}, ids)
	assert.Contains(t, seed.Location("RF00002"), "RF00002.sto")

	// invalid keys
	assert.ErrorIs(t, db.Put("../escape", []byte("x")), storage.ErrInvalidKey)
	assert.ErrorIs(t, db.Put("", []byte("x")), storage.ErrInvalidKey)

	// delete
	require.NoError(t, db.Delete("seed/RF00002.sto"))
	_, err = db.Get("seed/RF00002.sto")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, db.Delete("seed/RF00002.sto"), "deleting a missing key is not an error")

	require.NoError(t, db.Shutdown())
}
