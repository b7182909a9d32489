package bbolt

import (
	"bytes"
	"fmt"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/safing/biodb/storage"
)

const dbFileName = "db.bbolt"

var bucketName = []byte{0}

// BBolt storage made pluggable for biodb.
type BBolt struct {
	name string
	path string
	db   *bbolt.DB
}

func init() {
	_ = storage.Register("bbolt", NewBBolt)
}

// NewBBolt opens/creates a bbolt storage.
func NewBBolt(name, location string) (storage.Interface, error) {
	dbPath := filepath.Join(location, dbFileName)
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, err
	}

	// Create bucket
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BBolt{
		name: name,
		path: dbPath,
		db:   db,
	}, nil
}

// Location returns the location of key within the bbolt file.
func (b *BBolt) Location(key string) string {
	return fmt.Sprintf("%s#%s", b.path, key)
}

// Get returns the data stored at key.
func (b *BBolt) Get(key string) ([]byte, error) {
	var duplicate []byte

	err := b.db.View(func(tx *bbolt.Tx) error {
		// get value from db
		value := tx.Bucket(bucketName).Get([]byte(key))
		if value == nil {
			return storage.ErrNotFound
		}

		// copy data, value is only valid within the transaction
		duplicate = make([]byte, len(value))
		copy(duplicate, value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return duplicate, nil
}

// Exists returns whether key exists.
func (b *BBolt) Exists(key string) (bool, error) {
	var exists bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketName).Get([]byte(key)) != nil
		return nil
	})
	return exists, err
}

// Put stores data at key.
func (b *BBolt) Put(key string, data []byte) error {
	if err := storage.CheckKey(key); err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), data)
	})
}

// Delete deletes the entry at key.
func (b *BBolt) Delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// Keys returns all keys with the given prefix in ascending order.
func (b *BBolt) Keys(prefix string) ([]string, error) {
	var keys []string
	prefixBytes := []byte(prefix)

	err := b.db.View(func(tx *bbolt.Tx) error {
		// Iterate over items in sorted key order, starting at the prefix.
		c := tx.Bucket(bucketName).Cursor()
		for key, _ := c.Seek(prefixBytes); key != nil; key, _ = c.Next() {
			// if we don't match the prefix anymore, exit
			if !bytes.HasPrefix(key, prefixBytes) {
				return nil
			}
			keys = append(keys, string(key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Shutdown shuts down the storage.
func (b *BBolt) Shutdown() error {
	return b.db.Close()
}
