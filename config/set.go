package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tevino/abool"
)

var (
	validityFlag     = abool.NewBool(true)
	validityFlagLock sync.RWMutex
)

// getValidityFlag returns a flag that signifies if the configuration has
// been changed. This flag must not be changed, only read.
func getValidityFlag() *abool.AtomicBool {
	validityFlagLock.RLock()
	defer validityFlagLock.RUnlock()
	return validityFlag
}

// signalChanges marks the current validity flag as dirty, so that all
// cached getters reload their value.
func signalChanges() {
	validityFlagLock.Lock()
	defer validityFlagLock.Unlock()

	validityFlag.SetTo(false)
	validityFlag = abool.NewBool(true)
}

// replaceConfig replaces all active values. Invalid values are skipped and
// reported.
func replaceConfig(newValues map[string]interface{}) error {
	var firstErr error
	var errCnt int

	optionsLock.RLock()
	for key, option := range options {
		newValue, ok := newValues[key]

		option.Lock()
		option.activeValue = nil
		if ok {
			vc, err := validateValue(option, newValue)
			if err == nil {
				option.activeValue = vc
			} else {
				errCnt++
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		option.Unlock()
	}
	optionsLock.RUnlock()

	signalChanges()

	if firstErr != nil {
		if errCnt > 1 {
			return fmt.Errorf("encountered %d errors, first was: %w", errCnt, firstErr)
		}
		return firstErr
	}
	return nil
}

// SetConfigOption sets a single value and saves the configuration. A nil
// value resets the option to its default.
func SetConfigOption(key string, value interface{}) error {
	option, err := GetOption(key)
	if err != nil {
		return err
	}

	option.Lock()
	if value == nil {
		option.activeValue = nil
	} else {
		var vc *valueCache
		vc, err = validateValue(option, value)
		if err == nil {
			option.activeValue = vc
		}
	}
	option.Unlock()
	if err != nil {
		return err
	}

	signalChanges()
	return saveConfig()
}

// SetFromString parses value according to the option type and sets it.
// String arrays are comma separated.
func SetFromString(key, value string) error {
	option, err := GetOption(key)
	if err != nil {
		return err
	}

	switch option.OptType {
	case OptTypeString:
		return SetConfigOption(key, value)
	case OptTypeStringArray:
		var list []string
		for _, entry := range strings.Split(value, ",") {
			if entry = strings.TrimSpace(entry); entry != "" {
				list = append(list, entry)
			}
		}
		return SetConfigOption(key, list)
	case OptTypeInt:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return newInvalidValueError(key, value, "not an integer")
		}
		return SetConfigOption(key, i)
	case OptTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return newInvalidValueError(key, value, "not a boolean")
		}
		return SetConfigOption(key, b)
	default:
		return ErrUnsupportedType
	}
}
