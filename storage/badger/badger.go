package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger"

	"github.com/safing/biodb/log"
	"github.com/safing/biodb/storage"
)

// Badger storage made pluggable for biodb.
type Badger struct {
	name     string
	location string
	db       *badger.DB
}

func init() {
	_ = storage.Register("badger", NewBadger)
}

// NewBadger opens/creates a badger storage.
func NewBadger(name, location string) (storage.Interface, error) {
	opts := badger.DefaultOptions(location).WithLogger(badgerLogger{name: name})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Badger{
		name:     name,
		location: location,
		db:       db,
	}, nil
}

// Location returns the location of key within the badger directory.
func (b *Badger) Location(key string) string {
	return fmt.Sprintf("%s#%s", b.location, key)
}

// Get returns the data stored at key.
func (b *Badger) Get(key string) ([]byte, error) {
	var data []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Exists returns whether key exists.
func (b *Badger) Exists(key string) (bool, error) {
	_, err := b.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Put stores data at key.
func (b *Badger) Put(key string, data []byte) error {
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Delete deletes the entry at key.
func (b *Badger) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// Keys returns all keys with the given prefix in ascending order.
func (b *Badger) Keys(prefix string) ([]string, error) {
	var keys []string
	prefixBytes := []byte(prefix)

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Maintain runs a light maintenance operation on the storage.
func (b *Badger) Maintain() error {
	err := b.db.RunValueLogGC(0.7)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return err
	}
	return nil
}

// Shutdown shuts down the storage.
func (b *Badger) Shutdown() error {
	return b.db.Close()
}

type badgerLogger struct {
	name string
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	log.Errorf("badger %s: "+format, append([]interface{}{l.name}, args...)...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warningf("badger %s: "+format, append([]interface{}{l.name}, args...)...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	log.Debugf("badger %s: "+format, append([]interface{}{l.name}, args...)...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	log.Tracef("badger %s: "+format, append([]interface{}{l.name}, args...)...)
}
