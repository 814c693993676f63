package http

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/sirupsen/logrus"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type mockUserService struct {
	m          sync.RWMutex
	user       *domain.User
	session    *service.Session
	err        error
	loggedOut  []*auth.Identity
	deleted    []*auth.Identity
	registered []string
}

func (m *mockUserService) Register(_ context.Context, name, email, _ string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.registered = append(m.registered, email)
	return &domain.User{ID: 1, Name: name, Email: email}, nil
}

func (m *mockUserService) Login(context.Context, string, string) (*service.Session, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *mockUserService) Logout(_ context.Context, id *auth.Identity) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loggedOut = append(m.loggedOut, id)
	return nil
}

func (m *mockUserService) DeleteAccount(_ context.Context, id *auth.Identity) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockCatalog struct {
	products []*domain.Product
	product  *domain.Product
	err      error
	gotID    int64
}

func (m *mockCatalog) ListAvailable(context.Context) ([]*domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.gotID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

type mockCart struct {
	m        sync.RWMutex
	items    map[int64][]int64
	products []*domain.Product
	err      error
}

func (m *mockCart) AddItem(_ context.Context, userID, productID int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.items == nil {
		m.items = make(map[int64][]int64)
	}
	m.items[userID] = append(m.items[userID], productID)
	return nil
}

func (m *mockCart) RemoveItem(context.Context, int64, int64) error {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.err
}

func (m *mockCart) GetCart(context.Context, int64) ([]*domain.Product, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

type mockOrders struct {
	order     *domain.Order
	purchases []*domain.Purchase
	err       error
}

func (m *mockOrders) Buy(context.Context, int64, int64) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *mockOrders) ItemsBought(context.Context, int64) ([]*domain.Purchase, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.purchases, nil
}

func (m *mockOrders) GetOrder(context.Context, int64, int64) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

type mockVerifier struct {
	identity *auth.Identity
	err      error
	gotToken string
}

func (m *mockVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	m.gotToken = token
	if m.err != nil {
		return nil, m.err
	}
	return m.identity, nil
}

func testIdentity(userID int64) *auth.Identity {
	return &auth.Identity{UserID: userID, TokenID: "jti", ExpiresAt: time.Now().Add(time.Hour)}
}
