package data

import (
	"encoding/hex"
	"fmt"
	"slices"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// Catalog — read-only каталог магий, ключ — стабильный ID.
// Полностью загружается до первого каста и больше не меняется.
type Catalog struct {
	spells map[string]*SpellDefinition
	ids    []string // sorted
	digest string
}

// NewCatalog builds a catalog from definitions. Duplicate or invalid entries are an error.
func NewCatalog(defs []*SpellDefinition) (*Catalog, error) {
	c := &Catalog{
		spells: make(map[string]*SpellDefinition, len(defs)),
		ids:    make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		if def == nil {
			continue
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.spells[def.ID]; dup {
			return nil, fmt.Errorf("duplicate spell id %q", def.ID)
		}
		c.spells[def.ID] = def
		c.ids = append(c.ids, def.ID)
	}
	slices.Sort(c.ids)

	digest, err := c.computeDigest()
	if err != nil {
		return nil, err
	}
	c.digest = digest
	return c, nil
}

// Get returns a spell by ID. Returns nil if not found.
func (c *Catalog) Get(id string) *SpellDefinition {
	if c == nil {
		return nil
	}
	return c.spells[id]
}

// Len returns the number of spells.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.spells)
}

// IDs returns spell IDs in sorted order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.ids)
}

// All returns definitions in ID order.
func (c *Catalog) All() []*SpellDefinition {
	result := make([]*SpellDefinition, 0, len(c.ids))
	for _, id := range c.ids {
		result = append(result, c.spells[id])
	}
	return result
}

// Digest returns a hex blake2b-256 fingerprint of the catalog content.
// Two catalogs with the same spells have the same digest regardless of load order.
func (c *Catalog) Digest() string {
	return c.digest
}

func (c *Catalog) computeDigest() (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("creating blake2b hash: %w", err)
	}
	for _, id := range c.ids {
		out, err := yaml.Marshal(c.spells[id])
		if err != nil {
			return "", fmt.Errorf("encoding spell %s for digest: %w", id, err)
		}
		h.Write(out)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
