package system

import (
	"os"
	"strings"
)

// Environment reads the process environment. It implements
// ports.EnvironmentReader.
type Environment struct{}

// Environ returns the environment as a map.
func (Environment) Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// Lookup returns one variable.
func (Environment) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}
