package world

// EntityType tags what kind of thing occupies a chunk cell. Dispatch is on
// this tag rather than a type hierarchy.
type EntityType uint8

const (
	TypeItem EntityType = iota
	TypeObject
	TypePlayer
	TypeNpc

	typeCount
)

func (t EntityType) String() string {
	switch t {
	case TypeItem:
		return "item"
	case TypeObject:
		return "object"
	case TypePlayer:
		return "player"
	case TypeNpc:
		return "npc"
	}
	return "unknown"
}

// EntityState governs whether an entity participates in spatial queries and
// tick processing.
type EntityState uint8

const (
	StateInactive EntityState = iota
	StateActive
)

// Entity is the minimal capability the chunk grid needs from anything
// placed in the world. Identity is the (Type, Index) pair; Index is stable
// for the entity's lifetime and independent of Position.
type Entity interface {
	Index() int
	Type() EntityType
	Position() Position
}

// Npc is a non-player mob. Only the spatial capability is modelled here;
// behaviour lives in the content layer.
type Npc struct {
	index int
	id    int
	pos   Position
}

// NewNpc creates an npc with the given world index and definition id.
func NewNpc(index, id int, pos Position) *Npc {
	return &Npc{index: index, id: id, pos: pos}
}

func (n *Npc) Index() int         { return n.index }
func (n *Npc) Type() EntityType   { return TypeNpc }
func (n *Npc) Position() Position { return n.pos }
func (n *Npc) ID() int            { return n.id }
