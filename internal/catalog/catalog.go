package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Item describes one tracked auction entry. TemplatePath points at a
// grayscale PNG of the item's listed name; the engine loads it once per
// run. MaxPrice of 0 means any price is acceptable.
type Item struct {
	Name         string `yaml:"name"`
	Enabled      bool   `yaml:"enabled"`
	MaxPrice     int    `yaml:"max_price"`
	Quantity     int    `yaml:"quantity"`
	TemplatePath string `yaml:"template"`
}

// Catalog is the on-disk list of tracked items. The engine never writes
// through it; only the add-item flow and the user-facing layer do.
type Catalog struct {
	path  string
	Items []Item `yaml:"items"`
}

// Load reads the catalog from path. A missing file yields an empty
// catalog bound to that path so a later Save creates it.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Items))
	for i := range c.Items {
		it := &c.Items[i]
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("catalog entry %d has no name", i)
		}
		if seen[it.Name] {
			return fmt.Errorf("duplicate catalog entry %q", it.Name)
		}
		seen[it.Name] = true
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if it.MaxPrice < 0 {
			it.MaxPrice = 0
		}
	}
	return nil
}

// Save writes the catalog back to its path, creating directories as
// needed.
func (c *Catalog) Save() error {
	if c.path == "" {
		return fmt.Errorf("catalog has no backing path")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}
	return os.WriteFile(c.path, data, 0644)
}

// Add appends a new item, rejecting duplicate names.
func (c *Catalog) Add(item Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("item name must not be empty")
	}
	for _, existing := range c.Items {
		if existing.Name == item.Name {
			return fmt.Errorf("item %q already exists", item.Name)
		}
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	c.Items = append(c.Items, item)
	return nil
}

// Remove deletes an item by name. Returns false if not present.
func (c *Catalog) Remove(name string) bool {
	for i, it := range c.Items {
		if it.Name == name {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the item with the given name.
func (c *Catalog) Get(name string) (Item, bool) {
	for _, it := range c.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Snapshot returns a deep copy of the item list. The engine works on a
// snapshot so catalog edits never race with a running scan loop.
func (c *Catalog) Snapshot() []Item {
	out := make([]Item, len(c.Items))
	copy(out, c.Items)
	return out
}

var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
var collapseRuns = regexp.MustCompile(`[\s_]+`)

// SanitizeFileName turns an item name into a safe template file stem.
func SanitizeFileName(name string) string {
	s := invalidFileChars.ReplaceAllString(name, "_")
	s = collapseRuns.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._")
	if s == "" {
		s = "unnamed_item"
	}
	const maxLen = 100
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}
