package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/sirupsen/logrus"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memStore implements the repository interfaces in memory with the same
// error contract as the postgres repository.
type memStore struct {
	m        sync.RWMutex
	nextUser int64
	nextOrd  int64
	users    map[int64]*domain.User
	products map[int64]*domain.Product
	orders   map[int64]*domain.Order
	err      error

	listCalls int
}

func newMemStore(products ...*domain.Product) *memStore {
	s := &memStore{
		users:    make(map[int64]*domain.User),
		products: make(map[int64]*domain.Product),
		orders:   make(map[int64]*domain.Order),
	}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *memStore) CreateUser(_ context.Context, u *domain.User) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrEmailTaken
		}
	}
	s.nextUser++
	u.ID = s.nextUser
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) DeleteUser(_ context.Context, id int64) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	for _, o := range s.orders {
		if o.CustomerID != nil && *o.CustomerID == id {
			o.CustomerID = nil
		}
	}
	return nil
}

func (s *memStore) ListAvailableProducts(context.Context) ([]*domain.Product, error) {
	s.m.Lock()
	defer s.m.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := []*domain.Product{}
	for _, p := range s.products {
		if p.Availability {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) AddToCart(_ context.Context, userID, productID int64) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Cart = append(u.Cart, productID)
	return nil
}

func (s *memStore) RemoveFromCart(_ context.Context, userID, productID int64) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotInCart
	}
	kept := make([]int64, 0, len(u.Cart))
	for _, id := range u.Cart {
		if id != productID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(u.Cart) {
		return repository.ErrNotInCart
	}
	u.Cart = kept
	return nil
}

func (s *memStore) ListCartProducts(_ context.Context, userID int64) ([]*domain.Product, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []*domain.Product{}
	u, ok := s.users[userID]
	if !ok {
		return out, nil
	}
	seen := make(map[int64]bool)
	for _, id := range u.Cart {
		if p, ok := s.products[id]; ok && !seen[id] {
			seen[id] = true
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) Purchase(_ context.Context, userID, productID int64) (*domain.Order, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if !p.Availability {
		return nil, repository.ErrProductUnavailable
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	p.Availability = false
	u.PurchaseHistory = append(u.PurchaseHistory, productID)
	s.nextOrd++
	customer := userID
	o := &domain.Order{
		ID:          s.nextOrd,
		CustomerID:  &customer,
		ProductID:   productID,
		Placed:      true,
		PurchasedOn: time.Now().Truncate(24 * time.Hour),
	}
	s.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

func (s *memStore) GetOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) ListPurchases(_ context.Context, userID int64) ([]*domain.Purchase, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []*domain.Purchase{}
	for _, o := range s.orders {
		if o.OwnedBy(userID) {
			out = append(out, &domain.Purchase{
				OrderID:     o.ID,
				Product:     *s.products[o.ProductID],
				PurchasedOn: o.PurchasedOn,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (s *memStore) setDelivered(orderID int64) {
	s.m.Lock()
	defer s.m.Unlock()
	s.orders[orderID].Delivered = true
}

type mockCache struct {
	m           sync.RWMutex
	products    []*domain.Product
	generation  int64
	err         error
	invalidated int
	sets        chan error // receives every SetAvailable outcome when non-nil
}

func (m *mockCache) GetAvailable(context.Context) ([]*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.products == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.products, nil
}

func (m *mockCache) Generation(context.Context) (int64, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.generation, m.err
}

func (m *mockCache) SetAvailable(_ context.Context, generation int64, products []*domain.Product) error {
	m.m.Lock()
	err := m.err
	if err == nil && generation != m.generation {
		err = cache.ErrStaleWrite
	}
	if err == nil {
		m.products = products
	}
	sets := m.sets
	m.m.Unlock()

	if sets != nil {
		sets <- err
	}
	return err
}

func (m *mockCache) Invalidate(context.Context) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.products = nil
	m.generation++
	m.invalidated++
	return m.err
}

func (m *mockCache) invalidations() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.invalidated
}

type mockTokens struct {
	m            sync.RWMutex
	issued       []int64
	revoked      []string
	revokedUsers []int64
	err          error
}

func (m *mockTokens) Issue(userID int64) (string, time.Time, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return "", time.Time{}, m.err
	}
	m.issued = append(m.issued, userID)
	return "token-for-user", time.Now().Add(time.Hour), nil
}

func (m *mockTokens) Revoke(_ context.Context, id *auth.Identity) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, id.TokenID)
	return nil
}

func (m *mockTokens) RevokeUser(_ context.Context, userID int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revokedUsers = append(m.revokedUsers, userID)
	return nil
}

type countingInvalidator struct {
	m     sync.Mutex
	count int
}

func (c *countingInvalidator) Invalidate() {
	c.m.Lock()
	defer c.m.Unlock()
	c.count++
}
