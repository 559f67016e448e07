package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ObjectDefinition is the static template for one world object id.
type ObjectDefinition struct {
	ID      int      `yaml:"id"`
	Name    string   `yaml:"name"`
	Examine string   `yaml:"examine"`
	Width   int      `yaml:"width"`
	Length  int      `yaml:"length"`
	Solid   bool     `yaml:"solid"`
	Actions []string `yaml:"actions"`
}

// ObjectTable maps object ids to definitions.
type ObjectTable struct {
	byID map[int]*ObjectDefinition
}

// LoadObjectTable parses object definitions from YAML.
func LoadObjectTable(path string) (*ObjectTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object definitions: %w", err)
	}
	var defs []*ObjectDefinition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse object definitions: %w", err)
	}
	t := &ObjectTable{byID: make(map[int]*ObjectDefinition, len(defs))}
	for _, d := range defs {
		t.byID[d.ID] = d
	}
	return t, nil
}

func (t *ObjectTable) Get(id int) *ObjectDefinition {
	return t.byID[id]
}

func (t *ObjectTable) Count() int {
	return len(t.byID)
}
