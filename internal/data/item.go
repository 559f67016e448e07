package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemDefinition is the static template for one item id.
type ItemDefinition struct {
	ID          int      `yaml:"id"`
	Name        string   `yaml:"name"`
	Examine     string   `yaml:"examine"`
	Stackable   bool     `yaml:"stackable"`
	Value       int      `yaml:"value"`
	Weight      float64  `yaml:"weight"`
	Members     bool     `yaml:"members"`
	Tradeable   bool     `yaml:"tradeable"`
	NotedID     int      `yaml:"noted_id"`
	GroundMenu  []string `yaml:"ground_menu"`
	InventoryMenu []string `yaml:"inventory_menu"`
}

// ItemTable maps item ids to definitions. Populated once at bootstrap,
// read-only afterwards.
type ItemTable struct {
	byID map[int]*ItemDefinition
}

// LoadItemTable parses item definitions from YAML.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item definitions: %w", err)
	}
	var defs []*ItemDefinition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse item definitions: %w", err)
	}
	t := &ItemTable{byID: make(map[int]*ItemDefinition, len(defs))}
	for _, d := range defs {
		t.byID[d.ID] = d
	}
	return t, nil
}

// Get returns a definition by id, nil when unknown.
func (t *ItemTable) Get(id int) *ItemDefinition {
	return t.byID[id]
}

// Count returns how many definitions are loaded.
func (t *ItemTable) Count() int {
	return len(t.byID)
}
