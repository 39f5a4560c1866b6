// Package secrets resolves repository credentials from build properties,
// the system config, files, and environment variables.
package secrets

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/monoforge/monoforge/internal/application/ports"
	"github.com/monoforge/monoforge/internal/domain/entities"
	"github.com/monoforge/monoforge/internal/domain/values"
	"github.com/monoforge/monoforge/internal/infrastructure/system"
)

// ErrSecretNotFound is returned when no source provides a value.
var ErrSecretNotFound = errors.New("secret not found")

// Resolver implements ports.CredentialResolver.
// Resolved tokens are tracked for redaction.
type Resolver struct {
	config   *system.SecretsConfig
	provider ports.SensitiveValueProvider
	lookup   func(string) (string, bool)
	logger   *slog.Logger
	cache    map[string]string
	mu       sync.Mutex
}

// NewResolver creates a new credential resolver. config may be nil.
func NewResolver(
	config *system.SecretsConfig,
	provider ports.SensitiveValueProvider,
) *Resolver {
	return &Resolver{
		config:   config,
		provider: provider,
		lookup:   os.LookupEnv,
		logger:   slog.Default(),
		cache:    make(map[string]string),
	}
}

var _ ports.CredentialResolver = (*Resolver)(nil)

// Resolve returns the credentials of repo. Missing values leave ok false;
// unreadable secret files are logged and treated as missing.
func (r *Resolver) Resolve(repo entities.Repository, properties map[string]string) (ports.Credentials, bool) {
	userKey, tokenKey := repo.CredentialKeys()

	user, userErr := r.Lookup(userKey, properties)
	token, tokenErr := r.Lookup(tokenKey, properties)

	for _, err := range []error{userErr, tokenErr} {
		if err != nil && !errors.Is(err, ErrSecretNotFound) {
			r.logger.Warn("failed to read credential", "repository", repo.Name.String(), "error", err)
		}
	}

	if token != "" && r.provider != nil {
		r.provider.Track(token)
	}

	creds := ports.Credentials{User: user, Token: token}
	return creds, user != "" && token != ""
}

// Lookup resolves one credential property, first match wins: build
// properties, system config local values, its env mapping, its files, and
// finally the environment variable values.EnvKey derives from the name
// (publishing.space.token -> PUBLISHING_SPACE_TOKEN). Values from
// the non-property sources are cached for the life of the resolver.
func (r *Resolver) Lookup(name string, properties map[string]string) (string, error) {
	// Properties files are read with lower-cased keys.
	for _, key := range []string{name, strings.ToLower(name)} {
		if value := strings.TrimSpace(properties[key]); value != "" {
			return value, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if value, ok := r.cache[name]; ok {
		return value, nil
	}
	value, err := r.resolveFromSources(name)
	if err != nil {
		return "", err
	}
	r.cache[name] = value
	return value, nil
}

func (r *Resolver) resolveFromSources(name string) (string, error) {
	if r.config != nil {
		if value, ok := r.config.Local[name]; ok {
			return value, nil
		}

		if envVar, ok := r.config.Env[name]; ok {
			value, found := r.lookup(envVar)
			if !found || value == "" {
				return "", fmt.Errorf("secret %q: env var %q is not set: %w", name, envVar, ErrSecretNotFound)
			}
			return value, nil
		}

		if filePath, ok := r.config.Files[name]; ok {
			return readSecretFile(name, filePath)
		}
	}

	envVar := values.EnvKey(name)
	if value, ok := r.lookup(envVar); ok && value != "" {
		return value, nil
	}

	return "", fmt.Errorf("secret %q: %w", name, ErrSecretNotFound)
}

func readSecretFile(name, filePath string) (string, error) {
	// os.OpenRoot confines the read to the configured directory.
	dir := filepath.Dir(filePath)
	base := filepath.Base(filePath)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return "", fmt.Errorf("secret %q: failed to open directory %q: %w", name, dir, err)
	}
	defer func() { _ = root.Close() }()

	f, err := root.Open(base)
	if err != nil {
		return "", fmt.Errorf("secret %q: failed to open file %q: %w", name, base, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("secret %q: reading file %q: %w", name, filePath, err)
	}
	return strings.TrimSpace(string(data)), nil
}
