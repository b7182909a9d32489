// Package storage defines the accession-keyed blob store that split records
// are persisted to, and a registry of pluggable backends.
package storage

// Interface defines the storage API. Keys are slash separated paths like
// "seed/RF00001.sto". Writes of a single key are atomic and overwrite
// existing values.
type Interface interface {
	// Retrieve
	Get(key string) ([]byte, error)
	Exists(key string) (bool, error)
	// Keys returns all keys with the given prefix in ascending order.
	Keys(prefix string) ([]string, error)

	// Modify
	Put(key string, data []byte) error
	Delete(key string) error

	// Location returns a human readable location of key, used in error messages.
	Location(key string) string

	Shutdown() error
}
