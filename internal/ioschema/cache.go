package ioschema

import (
	"fmt"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/form"
)

// Cache keeps downloaded definitions and parsed sheets of one run. It is
// not safe for concurrent use. Create a new cache for every run.
type Cache struct {
	defs   map[string][]byte
	sheets map[form.SchemaKey]form.Sheet
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		defs:   make(map[string][]byte),
		sheets: make(map[form.SchemaKey]form.Sheet),
	}
}

func defKey(formID int, version string) string {
	return fmt.Sprintf("%d/%s", formID, version)
}

// Definition returns the raw definition of a form version. A nil slice
// with true means the form has no definition.
func (c *Cache) Definition(formID int, version string) ([]byte, bool) {
	res, ok := c.defs[defKey(formID, version)]
	return res, ok
}

// SetDefinition stores the raw definition of a form version.
func (c *Cache) SetDefinition(formID int, version string, data []byte) {
	c.defs[defKey(formID, version)] = data
}

// Sheet returns a parsed sheet.
func (c *Cache) Sheet(key form.SchemaKey) (form.Sheet, bool) {
	res, ok := c.sheets[key]
	return res, ok
}

// SetSheet stores a parsed sheet.
func (c *Cache) SetSheet(key form.SchemaKey, s form.Sheet) {
	c.sheets[key] = s
}

// Len returns the number of cached sheets.
func (c *Cache) Len() int {
	return len(c.sheets)
}
