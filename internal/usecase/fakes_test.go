package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/stretchr/testify/mock"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

// memCartRepo - хранилище корзин в памяти с проверкой версии как у MongoDB-репозитория.
type memCartRepo struct {
	mu        sync.Mutex
	carts     map[string]domain.Cart
	seq       int
	conflicts int // сколько ближайших Save завершатся конфликтом
	saves     int
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]domain.Cart{}}
}

func (r *memCartRepo) GetActiveByUser(_ context.Context, userID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.carts {
		if c.UserID == userID && c.IsActive {
			return cloneCart(c), nil
		}
	}
	return nil, e.ErrCartNotFound
}

func (r *memCartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[id]
	if !ok {
		return nil, e.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (r *memCartRepo) Create(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.carts {
		if c.UserID == cart.UserID && c.IsActive && cart.IsActive {
			return e.ErrCartAlreadyExists
		}
	}

	r.seq++
	cart.ID = fmt.Sprintf("cart-%d", r.seq)
	r.carts[cart.ID] = *cloneCart(*cart)
	return nil
}

func (r *memCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saves++
	stored, ok := r.carts[cart.ID]
	if !ok {
		return e.ErrCartNotFound
	}

	if r.conflicts > 0 {
		r.conflicts--
		stored.Version++
		r.carts[cart.ID] = stored
		return e.ErrCartConflict
	}

	if stored.Version != cart.Version {
		return e.ErrCartConflict
	}

	cart.Version++
	r.carts[cart.ID] = *cloneCart(*cart)
	return nil
}

func cloneCart(c domain.Cart) *domain.Cart {
	c.Items = append([]domain.CartItem{}, c.Items...)
	return &c
}

// memProductRepo - минимальный ProductRepository для корзины.
type memProductRepo struct {
	ProductRepository
	mu       sync.Mutex
	products map[int64]domain.Product
}

func newMemProductRepo(products ...domain.Product) *memProductRepo {
	r := &memProductRepo{products: map[int64]domain.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *memProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (r *memProductRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// catalogFunc адаптирует функцию к ProductCatalog.
type catalogFunc func(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error)

func (f catalogFunc) GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error) {
	return f(ctx, req)
}

func repoCatalog(repo *memProductRepo) ProductCatalog {
	return catalogFunc(func(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error) {
		products, err := repo.GetByIDs(ctx, req.IDs)
		if err != nil {
			return nil, err
		}
		return NewGetProductsRes(products, nil), nil
	})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []CartEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *CartEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return p.err
}

func (p *recordingPublisher) types() []CartEventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]CartEventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// Моки testify для каталога товаров.

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, product)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	if p := args.Get(0); p != nil {
		return p.([]domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, req *ListProductsReq) ([]domain.Product, int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepo) Update(ctx context.Context, id int64, req *UpdateProductReq) (*domain.Product, error) {
	args := m.Called(ctx, id, req)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) Rate(ctx context.Context, id int64, rating int) (*domain.Product, error) {
	args := m.Called(ctx, id, rating)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

type mockOutboxRepo struct{ mock.Mock }

func (m *mockOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	args := m.Called(ctx, event)
	return event, args.Error(0)
}

func (m *mockOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) ([]*OutboxEvent, error) {
	args := m.Called(ctx, limit, staleAfter)
	return args.Get(0).([]*OutboxEvent), args.Error(1)
}

func (m *mockOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) ReturnToPending(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// memCache - кэш в памяти, безопасный для фоновой записи.
type memCache struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	deleted  []int64
	getErr   error
	setCalls chan []domain.Product
}

func newMemCache() *memCache {
	return &memCache{products: map[int64]domain.Product{}, setCalls: make(chan []domain.Product, 8)}
}

func (c *memCache) GetProducts(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.getErr != nil {
		return nil, c.getErr
	}

	out := map[int64]domain.Product{}
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *memCache) SetProducts(_ context.Context, products []domain.Product) error {
	c.mu.Lock()
	for _, p := range products {
		c.products[p.ID] = p
	}
	c.mu.Unlock()

	c.setCalls <- products
	return nil
}

func (c *memCache) DeleteProducts(_ context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		delete(c.products, id)
	}
	c.deleted = append(c.deleted, ids...)
	return nil
}

func (c *memCache) deletedIDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.deleted...)
}

type fakeImagesInfra struct {
	req *UploadImagesReq
	res *UploadImagesRes
	err error
}

func (f *fakeImagesInfra) UploadImages(_ context.Context, req *UploadImagesReq) (*UploadImagesRes, error) {
	f.req = req
	return f.res, f.err
}

func (f *fakeImagesInfra) CleanupImages([]string) {}

func testProduct(id int64, price int64, stock int) domain.Product {
	p := domain.NewProduct(fmt.Sprintf("product-%d", id), price, stock, "electronics", []string{"http://img/1.png"})
	p.ID = id
	return *p
}
