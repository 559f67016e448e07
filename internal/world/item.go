package world

import "fmt"

// Container capacities for the three player-owned item stores.
const (
	InventoryCapacity = 28
	BankCapacity      = 352
	EquipmentCapacity = 14
)

// Item is an identifier and an amount. Immutable value type.
type Item struct {
	ID     int
	Amount int
}

// IndexedItem is an item pinned to a container slot, the form item state
// takes when it crosses the persistence boundary.
type IndexedItem struct {
	Index  int
	ID     int
	Amount int
}

// Container is a fixed-capacity, slot-addressed item store backing the
// inventory, bank, and equipment. Accessed only from the game loop.
type Container struct {
	capacity int
	slots    []*Item
}

func NewContainer(capacity int) *Container {
	return &Container{capacity: capacity, slots: make([]*Item, capacity)}
}

// Capacity returns the slot count.
func (c *Container) Capacity() int {
	return c.capacity
}

// Size returns how many slots are occupied.
func (c *Container) Size() int {
	n := 0
	for _, it := range c.slots {
		if it != nil {
			n++
		}
	}
	return n
}

// Get returns the item in a slot, or false when the slot is empty.
func (c *Container) Get(index int) (Item, bool) {
	if index < 0 || index >= c.capacity || c.slots[index] == nil {
		return Item{}, false
	}
	return *c.slots[index], true
}

// Set places an item into a slot, replacing any occupant.
func (c *Container) Set(index int, item Item) error {
	if index < 0 || index >= c.capacity {
		return fmt.Errorf("slot %d out of range [0, %d)", index, c.capacity)
	}
	c.slots[index] = &item
	return nil
}

// Clear empties a slot.
func (c *Container) Clear(index int) {
	if index >= 0 && index < c.capacity {
		c.slots[index] = nil
	}
}

// Add places an item into the first free slot. Returns false when full.
func (c *Container) Add(item Item) bool {
	for i, it := range c.slots {
		if it == nil {
			c.slots[i] = &item
			return true
		}
	}
	return false
}

// ToIndexed flattens occupied slots into a detached slice, safe to hand to
// another goroutine.
func (c *Container) ToIndexed() []IndexedItem {
	out := make([]IndexedItem, 0, c.Size())
	for i, it := range c.slots {
		if it != nil {
			out = append(out, IndexedItem{Index: i, ID: it.ID, Amount: it.Amount})
		}
	}
	return out
}

// Init replaces the container contents from a persisted slice.
func (c *Container) Init(items []IndexedItem) {
	for i := range c.slots {
		c.slots[i] = nil
	}
	for _, it := range items {
		if it.Index >= 0 && it.Index < c.capacity {
			c.slots[it.Index] = &Item{ID: it.ID, Amount: it.Amount}
		}
	}
}

// GroundItem is an item lying on a tile. OwnerIndex links it to the player
// that spawned it locally, or -1 for globally visible drops.
type GroundItem struct {
	index      int
	pos        Position
	Item       Item
	OwnerIndex int
}

func NewGroundItem(index int, item Item, pos Position, ownerIndex int) *GroundItem {
	return &GroundItem{index: index, pos: pos, Item: item, OwnerIndex: ownerIndex}
}

func (g *GroundItem) Index() int         { return g.index }
func (g *GroundItem) Type() EntityType   { return TypeItem }
func (g *GroundItem) Position() Position { return g.pos }

// GameObject is a world object occupying a tile. OwnerIndex links
// locally-spawned objects to their owning player, or -1 for static objects.
type GameObject struct {
	index      int
	pos        Position
	ID         int
	OwnerIndex int
}

func NewGameObject(index, id int, pos Position, ownerIndex int) *GameObject {
	return &GameObject{index: index, pos: pos, ID: id, OwnerIndex: ownerIndex}
}

func (o *GameObject) Index() int         { return o.index }
func (o *GameObject) Type() EntityType   { return TypeObject }
func (o *GameObject) Position() Position { return o.pos }
