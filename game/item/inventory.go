package item

import (
	"errors"
)

const maxInventorySlots = 99

var ErrInventoryFull = errors.New("inventory full")

// ID names an item resource, e.g. "ammo/9mm".
type ID string

// Stack is a quantity of one item.
type Stack struct {
	Item  ID  `json:"item" yaml:"item"`
	Count int `json:"count" yaml:"count"`
}

// Inventory is a character's bag. Each item occupies a single stacked slot.
type Inventory struct {
	stacks []Stack
}

// NewInventory returns an inventory holding the given stacks.
func NewInventory(stacks ...Stack) *Inventory {
	inv := &Inventory{}
	for _, s := range stacks {
		_ = inv.Add(s.Item, s.Count)
	}
	return inv
}

func (inv *Inventory) find(id ID) int {
	for i, s := range inv.stacks {
		if s.Item == id {
			return i
		}
	}
	return -1
}

// Add stores count units of id.
func (inv *Inventory) Add(id ID, count int) error {
	if count <= 0 {
		return nil
	}
	if i := inv.find(id); i >= 0 {
		inv.stacks[i].Count += count
		return nil
	}
	if len(inv.stacks) >= maxInventorySlots {
		return ErrInventoryFull
	}
	inv.stacks = append(inv.stacks, Stack{Item: id, Count: count})
	return nil
}

// Count returns how many units of id are held.
func (inv *Inventory) Count(id ID) int {
	if i := inv.find(id); i >= 0 {
		return inv.stacks[i].Count
	}
	return 0
}

// TryExtractExactItems removes exactly amount units of id and returns
// amount, or removes nothing and returns 0. A slot emptied this way is
// dropped.
func (inv *Inventory) TryExtractExactItems(id ID, amount int) int {
	i := inv.find(id)
	if i < 0 || amount <= 0 || inv.stacks[i].Count < amount {
		return 0
	}
	inv.stacks[i].Count -= amount
	if inv.stacks[i].Count == 0 {
		inv.stacks = append(inv.stacks[:i], inv.stacks[i+1:]...)
	}
	return amount
}

// Items returns a copy of every stack.
func (inv *Inventory) Items() []Stack {
	return append([]Stack(nil), inv.stacks...)
}

// Clear empties the inventory and returns what it held.
func (inv *Inventory) Clear() []Stack {
	out := inv.stacks
	inv.stacks = nil
	return out
}
