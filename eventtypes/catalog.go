package eventtypes

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

/* Catalog holds the closed set of known event types
 * Provides in-memory lookup for fast access; read-only once built
 */

// File represents the structure of an event types YAML file
type File struct {
	EventTypes []EventTypeConfig `yaml:"event_types"`
}

// EventTypeConfig represents a single event type in the YAML file
type EventTypeConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog holds the loaded event types
type Catalog struct {
	types map[string]EventType
}

// New builds a catalog from the given definitions
func New(types ...EventType) (*Catalog, error) {
	c := &Catalog{types: make(map[string]EventType, len(types))}
	for _, et := range types {
		if err := et.Validate(); err != nil {
			return nil, fmt.Errorf("validating event type: %w", err)
		}
		if et.Name == Reserved {
			return nil, fmt.Errorf("event type %s is reserved", Reserved)
		}
		if _, dup := c.types[et.Name]; dup {
			return nil, fmt.Errorf("duplicate event type: %s", et.Name)
		}
		c.types[et.Name] = et
	}
	return c, nil
}

// Default returns the built-in vocabulary
func Default() *Catalog {
	c, err := New(defaults...)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in event types: %v", err))
	}
	return c
}

// Load reads and parses an event types YAML file
func Load(filePath string) (*Catalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading event types file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML content
func Parse(data []byte) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing event types YAML: %w", err)
	}
	if len(file.EventTypes) == 0 {
		return nil, fmt.Errorf("event types file defines no event types")
	}

	types := make([]EventType, 0, len(file.EventTypes))
	for _, ec := range file.EventTypes {
		types = append(types, EventType{Name: ec.Name, Description: ec.Description})
	}
	return New(types...)
}

// Get retrieves an event type by name
func (c *Catalog) Get(name string) (EventType, error) {
	et, exists := c.types[name]
	if !exists {
		return EventType{}, fmt.Errorf("event type not found: %s", name)
	}
	return et, nil
}

// Contains checks if an event type is part of the vocabulary
func (c *Catalog) Contains(name string) bool {
	_, exists := c.types[name]
	return exists
}

// List returns all event types sorted by name
func (c *Catalog) List() []EventType {
	types := make([]EventType, 0, len(c.types))
	for _, et := range c.types {
		types = append(types, et)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types
}

// Names returns all event type names sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
