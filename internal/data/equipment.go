package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EquipmentDefinition describes how an item equips: its slot and the skill
// levels required to wear it.
type EquipmentDefinition struct {
	ID           int            `yaml:"id"`
	Slot         int            `yaml:"slot"`
	TwoHanded    bool           `yaml:"two_handed"`
	FullBody     bool           `yaml:"full_body"`
	FullHelmet   bool           `yaml:"full_helmet"`
	Requirements map[string]int `yaml:"requirements"`
	Bonuses      []int          `yaml:"bonuses"`
}

// EquipmentTable maps item ids to equipment definitions.
type EquipmentTable struct {
	byID map[int]*EquipmentDefinition
}

// LoadEquipmentTable parses equipment definitions from YAML.
func LoadEquipmentTable(path string) (*EquipmentTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read equipment definitions: %w", err)
	}
	var defs []*EquipmentDefinition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse equipment definitions: %w", err)
	}
	t := &EquipmentTable{byID: make(map[int]*EquipmentDefinition, len(defs))}
	for _, d := range defs {
		t.byID[d.ID] = d
	}
	return t, nil
}

func (t *EquipmentTable) Get(id int) *EquipmentDefinition {
	return t.byID[id]
}

func (t *EquipmentTable) Count() int {
	return len(t.byID)
}
