package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// LoadConfigFromFile reads configDir/configFileName into a T. A missing file is
// not an error, dflt is returned instead. Zero-valued fields of a found config
// are filled from dflt. The file is never written.
func LoadConfigFromFile[T any](configDir, configFileName string, dflt *T) (T, error) {
	configPath := filepath.Join(configDir, configFileName)
	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("attempting to load file: %v\n", configPath))
	}

	var conf T
	err := readAndUnmarshal(configPath, &conf)
	if errors.Is(err, fs.ErrNotExist) {
		if misc.Truthy(os.Getenv("DEBUG")) {
			ancli.PrintOK(fmt.Sprintf("no config at: %v, using defaults\n", configPath))
		}
		return *dflt, nil
	}
	if err != nil {
		return conf, fmt.Errorf("failed to unmarshal config '%v', error: %w", configFileName, err)
	}

	setNonZeroValueFields(&conf, dflt)

	if misc.Truthy(os.Getenv("DEBUG")) {
		ancli.PrintOK(fmt.Sprintf("found config: %+v\n", conf))
	}
	return conf, nil
}

// readAndUnmarshal the json file at filePath into config. A missing file
// yields an error wrapping fs.ErrNotExist.
func readAndUnmarshal[T any](filePath string, config *T) error {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := json.Unmarshal(b, config); err != nil {
		return fmt.Errorf("failed to unmarshal file: %w", err)
	}
	return nil
}

// setNonZeroValueFields on a using b as template
func setNonZeroValueFields[T any](a, b *T) bool {
	hasChanged := false
	t := reflect.TypeOf(*a)
	for i := range t.NumField() {
		f := t.Field(i)
		aVal := reflect.ValueOf(a).Elem().FieldByName(f.Name)
		bVal := reflect.ValueOf(b).Elem().FieldByName(f.Name)
		if f.IsExported() && aVal.IsZero() && !bVal.IsZero() {
			hasChanged = true
			aVal.Set(bVal)
		}
	}
	return hasChanged
}

func ReturnNonDefault[T comparable](a, b, defaultVal T) (T, error) {
	if a != defaultVal && b != defaultVal {
		return defaultVal, fmt.Errorf("values are mutually exclusive")
	}
	if a != defaultVal {
		return a, nil
	}
	if b != defaultVal {
		return b, nil
	}
	return defaultVal, nil
}
