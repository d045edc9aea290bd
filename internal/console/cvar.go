// Package console hosts the configuration collaborator (named numeric
// parameters), the control-command registry, and the text console buffer.
package console

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// CvarError reports a lookup of an unregistered parameter. Callers treat it
// as a fatal configuration error for the frame that needed the value.
type CvarError struct {
	Name string
}

func (e *CvarError) Error() string {
	return fmt.Sprintf("console: no such cvar %q", e.Name)
}

// CvarRegistry holds named numeric parameters. Defaults are registered by
// code; a YAML file merges user overrides on top.
type CvarRegistry struct {
	mu     sync.RWMutex
	values map[string]float32
}

func NewCvarRegistry() *CvarRegistry {
	return &CvarRegistry{values: make(map[string]float32)}
}

// Register sets a default. Re-registering keeps any existing value so file
// overrides survive.
func (r *CvarRegistry) Register(name string, def float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.values[name]; !ok {
		r.values[name] = def
	}
}

func (r *CvarRegistry) Set(name string, value float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] = value
}

// Value returns the parameter or a typed error when the name is unknown.
func (r *CvarRegistry) Value(name string) (float32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[name]
	if !ok {
		return 0, &CvarError{Name: name}
	}
	return v, nil
}

// LoadFile merges overrides from a YAML mapping of name to number.
func (r *CvarRegistry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var overrides map[string]float32
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("cvar config %s: %w", path, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, v := range overrides {
		r.values[name] = v
	}
	return nil
}
