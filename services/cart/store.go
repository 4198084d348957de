package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

type Listener func(state State)

// Store holds the cart lines of one visitor. Mutations are synchronous and every
// mutation notifies the subscribed listeners with the freshly derived state.
type Store struct {
	mutex     sync.Mutex
	items     []Item
	listeners map[int]Listener
	nextSubID int
}

func NewStore(items ...Item) *Store {
	s := &Store{
		listeners: map[int]Listener{},
	}
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		s.items = append(s.items, item)
	}
	return s
}

// AddItem adds exactly one unit, whatever quantity the given item carries.
func (s *Store) AddItem(item Item) {
	s.mutate(func(items []Item) []Item {
		for i := range items {
			if items[i].ID == item.ID {
				items[i].Quantity++
				return items
			}
		}
		item.Quantity = 1
		return append(items, item)
	})
}

// RemoveItem is a no-op for unknown ids.
func (s *Store) RemoveItem(id int) {
	s.mutate(func(items []Item) []Item {
		return remove(items, id)
	})
}

// UpdateQuantity removes the line when quantity drops to zero or below.
func (s *Store) UpdateQuantity(id int, quantity int) {
	s.mutate(func(items []Item) []Item {
		if quantity <= 0 {
			return remove(items, id)
		}
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

func (s *Store) Clear() {
	s.mutate(func(items []Item) []Item {
		return nil
	})
}

func (s *Store) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return deriveState(s.items)
}

func (s *Store) Items() []Item {
	return s.State().Items
}

func (s *Store) ItemCount() int {
	return s.State().ItemCount
}

func (s *Store) Total() decimal.Decimal {
	return s.State().Total
}

func (s *Store) IsEmpty() bool {
	return s.ItemCount() == 0
}

// Subscribe returns a function that removes the listener again.
func (s *Store) Subscribe(listener Listener) func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = listener

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) mutate(f func(items []Item) []Item) {
	s.mutex.Lock()
	s.items = f(s.items)
	state := deriveState(s.items)
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mutex.Unlock()

	// outside the lock, listeners may read the store
	for _, l := range listeners {
		l(state)
	}
}

func remove(items []Item, id int) []Item {
	result := items[:0]
	for _, item := range items {
		if item.ID != id {
			result = append(result, item)
		}
	}
	return result
}
