package world

// Skill identifiers, in protocol order.
const (
	SkillAttack = iota
	SkillDefence
	SkillStrength
	SkillHitpoints
	SkillRanged
	SkillPrayer
	SkillMagic
	SkillCooking
	SkillWoodcutting
	SkillFletching
	SkillFishing
	SkillFiremaking
	SkillCrafting
	SkillSmithing
	SkillMining
	SkillHerblore
	SkillAgility
	SkillThieving
	SkillSlayer
	SkillFarming
	SkillRunecrafting

	SkillCount
)

// Skill is one trained skill's persisted state.
type Skill struct {
	ID         int
	Level      int
	Experience float64
}

// SkillSet holds a player's skills, fixed-size and index-addressed.
type SkillSet struct {
	skills [SkillCount]Skill
}

// NewSkillSet returns starting skills: level 1 everywhere except
// hitpoints, which begins at 10.
func NewSkillSet() *SkillSet {
	s := &SkillSet{}
	for i := range s.skills {
		s.skills[i] = Skill{ID: i, Level: 1}
	}
	s.skills[SkillHitpoints] = Skill{ID: SkillHitpoints, Level: 10, Experience: 1154}
	return s
}

// Get returns a skill by identifier.
func (s *SkillSet) Get(id int) Skill {
	return s.skills[id]
}

// SetLevel overwrites one skill's level.
func (s *SkillSet) SetLevel(id, level int) {
	s.skills[id].Level = level
}

// SetExperience overwrites one skill's experience.
func (s *SkillSet) SetExperience(id int, xp float64) {
	s.skills[id].Experience = xp
}

// ToSlice copies the skills into a detached slice.
func (s *SkillSet) ToSlice() []Skill {
	out := make([]Skill, SkillCount)
	copy(out, s.skills[:])
	return out
}

// Init replaces skills from a persisted slice.
func (s *SkillSet) Init(skills []Skill) {
	for _, sk := range skills {
		if sk.ID >= 0 && sk.ID < SkillCount {
			s.skills[sk.ID] = sk
		}
	}
}
