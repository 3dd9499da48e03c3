// Package memory is an in-process implementation of the repository
// interfaces. It mirrors the PostgreSQL constraints the services rely on.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"canteen/internal/domain"
	"canteen/internal/repository"
)

type Store struct {
	mu sync.Mutex

	nextID     int64
	users      map[int64]domain.User
	categories map[int64]domain.Category
	menu       map[int64]domain.MenuItem
	orders     map[int64]domain.Order
	items      map[int64][]domain.OrderItem
	reviews    []domain.Review

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:      make(map[int64]domain.User),
		categories: make(map[int64]domain.Category),
		menu:       make(map[int64]domain.MenuItem),
		orders:     make(map[int64]domain.Order),
		items:      make(map[int64][]domain.OrderItem),
		now:        time.Now,
	}
}

// Repository exposes the store through the same aggregate the services take.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{UserRepo: s, MenuRepo: s, OrderRepo: s, ReviewRepo: s}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) AddCategory(name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := domain.Category{ID: s.id(), Name: name}
	s.categories[c.ID] = c
	return c
}

// users

func (s *Store) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return domain.User{}, fmt.Errorf("%w: username taken", domain.ErrConflict)
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.User{}, fmt.Errorf("%w: email taken", domain.ErrConflict)
		}
	}
	u.ID = s.id()
	u.Role = domain.ParseRole(string(u.Role))
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("get user %d: %w", id, domain.ErrNotFound)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.Username == username })
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	return s.findUser(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) findUser(match func(domain.User) bool) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) updateUser(id int64, fn func(*domain.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	fn(&u)
	s.users[id] = u
	return nil
}

func (s *Store) SetResetCode(_ context.Context, userID int64, code string, expiresAt time.Time) error {
	return s.updateUser(userID, func(u *domain.User) {
		u.ResetCode = &code
		u.ResetCodeExpiresAt = &expiresAt
		u.ResetVerifiedAt = nil
	})
}

func (s *Store) MarkResetVerified(_ context.Context, userID int64, at time.Time) error {
	return s.updateUser(userID, func(u *domain.User) { u.ResetVerifiedAt = &at })
}

func (s *Store) ResetPassword(_ context.Context, userID int64, digest string) error {
	return s.updateUser(userID, func(u *domain.User) {
		u.PasswordDigest = digest
		u.ResetCode, u.ResetCodeExpiresAt, u.ResetVerifiedAt = nil, nil, nil
	})
}

func (s *Store) UpdateRole(ctx context.Context, userID int64, role domain.Role) (domain.User, error) {
	if err := s.updateUser(userID, func(u *domain.User) { u.Role = domain.ParseRole(string(role)) }); err != nil {
		return domain.User{}, err
	}
	return s.GetUser(ctx, userID)
}

func (s *Store) DeleteUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("delete user %d: %w", userID, domain.ErrNotFound)
	}
	delete(s.users, userID)
	for id, o := range s.orders {
		if o.UserID == userID {
			o.UserID = 0
			s.orders[id] = o
		}
	}
	for i := range s.reviews {
		if s.reviews[i].UserID != nil && *s.reviews[i].UserID == userID {
			s.reviews[i].UserID = nil
		}
	}
	return nil
}
