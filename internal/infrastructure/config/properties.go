package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-viper/encoding/javaproperties"
	"github.com/spf13/viper"
)

// PropertiesFileName holds build properties next to monoforge.yaml and
// in $HOME/.monoforge.
const PropertiesFileName = "monoforge.properties"

// PropertiesLoader reads build properties. Keys are returned lower-cased.
type PropertiesLoader struct {
	homeDir string
}

// NewPropertiesLoader creates a loader that reads the user file from
// $HOME/.monoforge. An unknown home directory disables the user file.
func NewPropertiesLoader() *PropertiesLoader {
	home, _ := os.UserHomeDir()
	return &PropertiesLoader{homeDir: home}
}

// Load merges the user file, the workspace file in rootDir, and overrides,
// later sources winning. Missing files are skipped.
func (l *PropertiesLoader) Load(rootDir string, overrides map[string]string) (map[string]string, error) {
	props := make(map[string]string)

	var paths []string
	if l.homeDir != "" {
		paths = append(paths, filepath.Join(l.homeDir, ".monoforge", PropertiesFileName))
	}
	paths = append(paths, filepath.Join(rootDir, PropertiesFileName))

	for _, path := range paths {
		values, err := readProperties(path)
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			props[k] = v
		}
	}

	for k, v := range overrides {
		props[k] = v
	}
	return props, nil
}

// viper ships without a Java properties codec.
var propertiesCodecs = func() *viper.DefaultCodecRegistry {
	r := viper.NewCodecRegistry()
	_ = r.RegisterCodec("properties", &javaproperties.Codec{})
	return r
}()

func readProperties(path string) (map[string]string, error) {
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open properties directory: %w", err)
	}
	defer func() { _ = root.Close() }()

	f, err := root.Open(filepath.Base(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	v := viper.NewWithOptions(viper.WithCodecRegistry(propertiesCodecs))
	v.SetConfigType("properties")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	values := make(map[string]string, len(v.AllKeys()))
	for _, key := range v.AllKeys() {
		values[key] = v.GetString(key)
	}
	return values, nil
}
