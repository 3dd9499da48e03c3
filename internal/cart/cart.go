// Package cart keeps per-user shopping carts on the client side.
package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"canteen/internal/domain"
)

const guestKey = "myCart"

// Key is the storage key of a user's cart. Signed-out users share the guest cart.
func Key(userID int64) string {
	if userID <= 0 {
		return guestKey
	}
	return fmt.Sprintf("cart_%d", userID)
}

type Line struct {
	ItemID   int64   `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
}

// Storage is a string-keyed blob store, e.g. browser local storage or a file.
type Storage interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

type MemStorage struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemStorage() *MemStorage { return &MemStorage{m: map[string][]byte{}} }

func (s *MemStorage) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemStorage) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MemStorage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// Book reads and writes carts as JSON arrays in a Storage.
type Book struct {
	mu    sync.Mutex
	store Storage
}

func NewBook(store Storage) *Book {
	if store == nil {
		store = NewMemStorage()
	}
	return &Book{store: store}
}

// Add puts one unit of item in the user's cart, bumping the quantity if it is already there.
func (b *Book) Add(userID int64, item domain.MenuItem) ([]Line, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines, err := b.load(userID)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range lines {
		if lines[i].ItemID == item.ID {
			lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, Line{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: 1,
			Price:    item.Price,
			Image:    "/images/" + item.ImageURL,
		})
	}
	return lines, b.save(userID, lines)
}

// Remove drops an item from the cart entirely.
func (b *Book) Remove(userID, itemID int64) ([]Line, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines, err := b.load(userID)
	if err != nil {
		return nil, err
	}
	kept := lines[:0]
	for _, l := range lines {
		if l.ItemID != itemID {
			kept = append(kept, l)
		}
	}
	return kept, b.save(userID, kept)
}

func (b *Book) Lines(userID int64) ([]Line, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(userID)
}

func (b *Book) Clear(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.store.Delete(Key(userID))
}

// Total sums price times quantity over the lines.
func Total(lines []Line) float64 {
	var t float64
	for _, l := range lines {
		t += l.Price * float64(l.Quantity)
	}
	return t
}

func (b *Book) load(userID int64) ([]Line, error) {
	raw, ok := b.store.Get(Key(userID))
	if !ok || len(raw) == 0 {
		return []Line{}, nil
	}
	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", Key(userID), err)
	}
	return lines, nil
}

func (b *Book) save(userID int64, lines []Line) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	b.store.Set(Key(userID), raw)
	return nil
}
