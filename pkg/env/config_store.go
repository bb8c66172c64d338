package env

import (
	"github.com/meow-stack/gentest/pkg/memfs"
)

// ConfigFile is the per-project generator configuration file.
const ConfigFile = ".yo-rc.json"

// ConfigStore reads and writes one generator's section of ConfigFile
// through the staging store.
type ConfigStore struct {
	store *memfs.Store
	path  string
	name  string
}

func newConfigStore(store *memfs.Store, path, name string) *ConfigStore {
	return &ConfigStore{store: store, path: path, name: name}
}

// Path returns the config file path.
func (c *ConfigStore) Path() string { return c.path }

// Name returns the root key of this generator's section.
func (c *ConfigStore) Name() string { return c.name }

func (c *ConfigStore) file() map[string]any {
	v, err := c.store.ReadJSON(c.path, nil)
	if err != nil {
		return map[string]any{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// GetAll returns a copy of the section.
func (c *ConfigStore) GetAll() map[string]any {
	out := map[string]any{}
	if section, ok := c.file()[c.name].(map[string]any); ok {
		for k, v := range section {
			out[k] = v
		}
	}
	return out
}

// Get returns a single value.
func (c *ConfigStore) Get(key string) any {
	return c.GetAll()[key]
}

// Set stores a value and saves.
func (c *ConfigStore) Set(key string, value any) error {
	all := c.GetAll()
	all[key] = value
	return c.save(all)
}

// Defaults sets every key of values that the section does not have yet,
// then saves.
func (c *ConfigStore) Defaults(values map[string]any) error {
	all := c.GetAll()
	for k, v := range values {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return c.save(all)
}

// Save writes the section, creating the file when needed.
func (c *ConfigStore) Save() error {
	return c.save(c.GetAll())
}

func (c *ConfigStore) save(section map[string]any) error {
	file := c.file()
	file[c.name] = section
	return c.store.WriteJSON(c.path, file)
}
