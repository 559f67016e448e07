package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NpcDefinition is the static template for one npc id.
type NpcDefinition struct {
	ID          int      `yaml:"id"`
	Name        string   `yaml:"name"`
	Examine     string   `yaml:"examine"`
	Size        int      `yaml:"size"`
	CombatLevel int      `yaml:"combat_level"`
	Actions     []string `yaml:"actions"`
}

// NpcTable maps npc ids to definitions.
type NpcTable struct {
	byID map[int]*NpcDefinition
}

// LoadNpcTable parses npc definitions from YAML.
func LoadNpcTable(path string) (*NpcTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read npc definitions: %w", err)
	}
	var defs []*NpcDefinition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse npc definitions: %w", err)
	}
	t := &NpcTable{byID: make(map[int]*NpcDefinition, len(defs))}
	for _, d := range defs {
		t.byID[d.ID] = d
	}
	return t, nil
}

func (t *NpcTable) Get(id int) *NpcDefinition {
	return t.byID[id]
}

func (t *NpcTable) Count() int {
	return len(t.byID)
}
