package deck

import "sync"

// Pair holds both decks and the Active-Deck Pointer. All callers address
// decks through Active and Inactive so that a swap redirects every later
// operation.
type Pair struct {
	mu     sync.RWMutex
	decks  [2]Deck
	active ID
}

// NewPair creates a pair with deck A active. a and b must report IDs A and B.
func NewPair(a, b Deck) *Pair {
	return &Pair{decks: [2]Deck{a, b}, active: A}
}

// ActiveID returns the pointer value.
func (p *Pair) ActiveID() ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// Active returns the deck the pointer selects.
func (p *Pair) Active() Deck {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.decks[p.active]
}

// Inactive returns the deck the pointer does not select.
func (p *Pair) Inactive() Deck {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.decks[p.active.Other()]
}

// IsActive reports whether id is the active deck.
func (p *Pair) IsActive(id ID) bool {
	return p.ActiveID() == id
}

// Swap flips the pointer and returns the new active ID.
func (p *Pair) Swap() ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = p.active.Other()
	return p.active
}

// Each calls fn for both decks, active first.
func (p *Pair) Each(fn func(d Deck, active bool)) {
	p.mu.RLock()
	active, inactive := p.decks[p.active], p.decks[p.active.Other()]
	p.mu.RUnlock()
	fn(active, true)
	fn(inactive, false)
}
