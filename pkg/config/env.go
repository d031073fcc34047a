package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// EnvPrefix prefixes every environment variable equate reads.
const EnvPrefix = "EQUATE_"

// EnvLoader reads settings from the process environment and from an
// optional .env file. Process variables take precedence.
type EnvLoader struct {
	mu     sync.RWMutex
	vars   map[string]string
	lookup func(string) (string, bool)
}

// NewEnvLoader creates a loader backed by the process environment.
func NewEnvLoader() *EnvLoader {
	return &EnvLoader{
		vars:   make(map[string]string),
		lookup: os.LookupEnv,
	}
}

// Load reads KEY=VALUE lines from a .env file. Blank lines and
// lines starting with # are skipped; surrounding quotes are
// removed from values.
func (l *EnvLoader) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer file.Close()

	l.mu.Lock()
	defer l.mu.Unlock()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 &&
			(value[0] == '"' || value[0] == '\'') &&
			value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		l.vars[strings.TrimSpace(key)] = value
	}
	return scanner.Err()
}

// Lookup returns the value of key and whether it is set.
func (l *EnvLoader) Lookup(key string) (string, bool) {
	if v, ok := l.lookup(key); ok {
		return v, true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.vars[key]
	return v, ok
}

// Get returns the value of key, or "".
func (l *EnvLoader) Get(key string) string {
	v, _ := l.Lookup(key)
	return v
}

// GetWithDefault returns the value of key, or defaultValue when it
// is unset or empty.
func (l *EnvLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

// GetBool parses key as a boolean. ok is false when key is unset.
func (l *EnvLoader) GetBool(key string) (value, ok bool, err error) {
	v, set := l.Lookup(key)
	if !set || v == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return b, true, nil
}

// GetInt parses key as an integer. ok is false when key is unset.
func (l *EnvLoader) GetInt(key string) (value int, ok bool, err error) {
	v, set := l.Lookup(key)
	if !set || v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// GetList splits key on commas, dropping empty items. ok is false
// when key is unset.
func (l *EnvLoader) GetList(key string) (values []string, ok bool) {
	v, set := l.Lookup(key)
	if !set {
		return nil, false
	}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	return values, true
}

// All returns the variables loaded from files.
func (l *EnvLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}
