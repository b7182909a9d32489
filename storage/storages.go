package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/safing/biodb/log"
)

// A Factory creates a new storage of it's type.
type Factory func(name, location string) (Interface, error)

var (
	storages     = make(map[string]Factory)
	storagesLock sync.Mutex

	// ErrUnknownType is returned when opening a storage of an unregistered type.
	ErrUnknownType = errors.New("storage type does not exist")
)

// Register registers a new storage type.
func Register(storageType string, factory Factory) error {
	storagesLock.Lock()
	defer storagesLock.Unlock()

	_, ok := storages[storageType]
	if ok {
		return errors.New("factory for this type already exists")
	}

	storages[storageType] = factory
	return nil
}

// Open opens the storage with the given name and storageType at location.
func Open(name, storageType, location string) (Interface, error) {
	storagesLock.Lock()
	factory, ok := storages[storageType]
	storagesLock.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", storageType, ErrUnknownType)
	}

	db, err := factory(name, location)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage %s at %s: %w", storageType, name, location, err)
	}
	log.Debugf("storage: opened %s storage %s at %s", storageType, name, location)
	return db, nil
}

// Types returns the registered storage types in ascending order.
func Types() []string {
	storagesLock.Lock()
	defer storagesLock.Unlock()

	types := make([]string, 0, len(storages))
	for storageType := range storages {
		types = append(types, storageType)
	}
	sort.Strings(types)
	return types
}

// CheckKey checks if key is a valid storage key.
func CheckKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	case strings.HasPrefix(key, "/"):
		return fmt.Errorf("%w: %q is absolute", ErrInvalidKey, key)
	case strings.Contains(key, "\\"):
		return fmt.Errorf("%w: %q contains a backslash", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("%w: %q has an empty or relative segment", ErrInvalidKey, key)
		}
	}
	return nil
}
