package config

import (
	"github.com/safing/biodb/log"
	"github.com/safing/biodb/utils"
)

type (
	// StringOption returns the current value of a string option.
	StringOption func() string
	// StringArrayOption returns the current value of a string array option.
	StringArrayOption func() []string
	// IntOption returns the current value of an int option.
	IntOption func() int64
	// BoolOption returns the current value of a bool option.
	BoolOption func() bool
)

// cachedGetter returns a function that resolves the option through convert
// only after the configuration changed.
func cachedGetter[T any](key string, fallback T, convert func(interface{}) (T, bool)) func() T {
	resolve := func() T {
		if v, ok := convert(findValue(key)); ok {
			return v
		}
		return fallback
	}

	valid := getValidityFlag()
	value := resolve()
	return func() T {
		if !valid.IsSet() {
			valid = getValidityFlag()
			value = resolve()
		}
		return value
	}
}

// GetAsString returns a cached getter for a string option.
func GetAsString(key string, fallback string) StringOption {
	return cachedGetter(key, fallback, func(v interface{}) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
}

// GetAsStringArray returns a cached getter for a string array option. Every
// call returns a copy.
func GetAsStringArray(key string, fallback []string) StringArrayOption {
	get := cachedGetter(key, fallback, func(v interface{}) ([]string, bool) {
		s, ok := v.([]string)
		return s, ok
	})
	return func() []string {
		return utils.DuplicateStrings(get())
	}
}

// GetAsInt returns a cached getter for an int option.
func GetAsInt(key string, fallback int64) IntOption {
	return cachedGetter(key, fallback, toInt64)
}

// GetAsBool returns a cached getter for a bool option.
func GetAsBool(key string, fallback bool) BoolOption {
	return cachedGetter(key, fallback, func(v interface{}) (bool, bool) {
		b, ok := v.(bool)
		return b, ok
	})
}

// findValue returns the active or default value of the option, or nil if it
// is not registered.
func findValue(key string) interface{} {
	optionsLock.RLock()
	option, ok := options[key]
	optionsLock.RUnlock()
	if !ok {
		log.Errorf("config: request for unregistered option: %s", key)
		return nil
	}
	return option.Value()
}

// toInt64 converts the integer representations an option value can have:
// int defaults, int64 active values and whole float64 numbers from JSON.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
