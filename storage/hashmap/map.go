// Package hashmap provides an in-memory storage backend, mainly for testing
// and for splitting dumps that are only inspected once.
package hashmap

import (
	"sync"

	"github.com/armon/go-radix"

	"github.com/safing/biodb/storage"
)

// HashMap storage. Entries are held in a radix tree for ordered prefix scans.
type HashMap struct {
	name   string
	db     *radix.Tree
	dbLock sync.RWMutex
}

func init() {
	_ = storage.Register("hashmap", NewHashMap)
}

// NewHashMap creates a hashmap storage.
func NewHashMap(name, _ string) (storage.Interface, error) {
	return &HashMap{
		name: name,
		db:   radix.New(),
	}, nil
}

// Location returns the location of key.
func (hm *HashMap) Location(key string) string {
	return "hashmap:" + hm.name + "/" + key
}

// Get returns the data stored at key.
func (hm *HashMap) Get(key string) ([]byte, error) {
	hm.dbLock.RLock()
	defer hm.dbLock.RUnlock()

	v, ok := hm.db.Get(key)
	if !ok {
		return nil, storage.ErrNotFound
	}
	data := v.([]byte) //nolint:forcetypeassert // only []byte are inserted
	duplicate := make([]byte, len(data))
	copy(duplicate, data)
	return duplicate, nil
}

// Exists returns whether key exists.
func (hm *HashMap) Exists(key string) (bool, error) {
	hm.dbLock.RLock()
	defer hm.dbLock.RUnlock()

	_, ok := hm.db.Get(key)
	return ok, nil
}

// Put stores data at key.
func (hm *HashMap) Put(key string, data []byte) error {
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	duplicate := make([]byte, len(data))
	copy(duplicate, data)

	hm.dbLock.Lock()
	defer hm.dbLock.Unlock()

	hm.db.Insert(key, duplicate)
	return nil
}

// Delete deletes the entry at key.
func (hm *HashMap) Delete(key string) error {
	hm.dbLock.Lock()
	defer hm.dbLock.Unlock()

	hm.db.Delete(key)
	return nil
}

// Keys returns all keys with the given prefix in ascending order.
func (hm *HashMap) Keys(prefix string) ([]string, error) {
	hm.dbLock.RLock()
	defer hm.dbLock.RUnlock()

	var keys []string
	hm.db.WalkPrefix(prefix, func(key string, _ interface{}) bool {
		keys = append(keys, key)
		return false
	})
	return keys, nil
}

// Shutdown shuts down the storage.
func (hm *HashMap) Shutdown() error {
	return nil
}
