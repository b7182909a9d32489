package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/safing/biodb/log"
)

var (
	configFilePath     string
	configFilePathLock sync.Mutex
)

// SetFilePath sets the path of the config file. An empty path disables
// persistence.
func SetFilePath(path string) {
	configFilePathLock.Lock()
	defer configFilePathLock.Unlock()

	configFilePath = path
}

func getFilePath() string {
	configFilePathLock.Lock()
	defer configFilePathLock.Unlock()

	return configFilePath
}

// Load reads the config file, if it exists, and replaces all active values.
func Load() error {
	path := getFilePath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debugf("config: no config file at %s", path)
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	values, err := JSONToMap(data)
	if err != nil {
		return err
	}
	return replaceConfig(values)
}

func saveConfig() error {
	path := getFilePath()
	if path == "" {
		return nil
	}

	activeValues := make(map[string]interface{})
	for _, option := range Options() {
		option.Lock()
		if option.activeValue != nil {
			activeValues[option.Key] = option.activeValue.getData(option)
		}
		option.Unlock()
	}

	data, err := MapToJSON(activeValues)
	if err != nil {
		log.Errorf("config: failed to save config: %s", err)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return renameio.WriteFile(path, data, 0o600)
}

// JSONToMap reads the values of all registered options from a hierarchical
// json object. The option key "a/b/c" is read from the path "a.b.c".
func JSONToMap(jsonData []byte) (map[string]interface{}, error) {
	if !gjson.ValidBytes(jsonData) {
		return nil, ErrInvalidJSON
	}

	values := make(map[string]interface{})
	for _, option := range Options() {
		result := gjson.GetBytes(jsonData, keyToPath(option.Key))
		if result.Exists() {
			values[option.Key] = result.Value()
		}
	}
	return values, nil
}

// MapToJSON expands flattened option keys into a hierarchical, indented
// json object.
func MapToJSON(values map[string]interface{}) ([]byte, error) {
	data := []byte("{}")
	for _, option := range Options() {
		value, ok := values[option.Key]
		if !ok {
			continue
		}

		var err error
		data, err = sjson.SetBytes(data, keyToPath(option.Key), value)
		if err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", option.Key, err)
		}
	}
	return pretty.PrettyOptions(data, &pretty.Options{
		Width:    80,
		Prefix:   "",
		Indent:   "  ",
		SortKeys: true,
	}), nil
}

func keyToPath(key string) string {
	return strings.ReplaceAll(key, "/", ".")
}
