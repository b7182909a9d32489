package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	optionsLock sync.RWMutex
	options     = make(map[string]*Option)
)

// Register registers a new configuration option.
func Register(option *Option) error {
	if option.Name == "" ||
		option.Key == "" ||
		option.Description == "" ||
		option.OptType == 0 {
		return ErrIncompleteCall
	}
	if strings.HasPrefix(option.Key, "/") || strings.HasSuffix(option.Key, "/") || strings.Contains(option.Key, ".") {
		return &InvalidOptionError{Msg: fmt.Sprintf("invalid key %q", option.Key)}
	}

	if option.ValidationRegex != "" {
		var err error
		option.compiledRegex, err = regexp.Compile(option.ValidationRegex)
		if err != nil {
			return &InvalidOptionError{
				Msg: fmt.Sprintf("could not compile validation regex of %s", option.Key),
				Err: err,
			}
		}
	}
	if option.DefaultValue != nil {
		if _, err := validateValue(option, option.DefaultValue); err != nil {
			return &InvalidOptionError{
				Msg: fmt.Sprintf("invalid default value of %s", option.Key),
				Err: err,
			}
		}
	}

	optionsLock.Lock()
	defer optionsLock.Unlock()

	if _, ok := options[option.Key]; ok {
		return &InvalidOptionError{Msg: fmt.Sprintf("option %s already registered", option.Key)}
	}
	options[option.Key] = option

	return nil
}

// GetOption returns the option with the given key.
func GetOption(key string) (*Option, error) {
	optionsLock.RLock()
	defer optionsLock.RUnlock()

	option, ok := options[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOption, key)
	}
	return option, nil
}

// Options returns all registered options sorted by key.
func Options() []*Option {
	optionsLock.RLock()
	defer optionsLock.RUnlock()

	keys := maps.Keys(options)
	slices.Sort(keys)

	list := make([]*Option, 0, len(keys))
	for _, key := range keys {
		list = append(list, options[key])
	}
	return list
}
