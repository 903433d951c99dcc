package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DRSN-tech/onlinestore/internal/cfg"
	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

type mockProductUC struct{ mock.Mock }

func (m *mockProductUC) CreateProduct(ctx context.Context, req *usecase.CreateProductReq) (*domain.Product, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductUC) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductUC) GetProductsInfo(ctx context.Context, req *usecase.GetProductsReq) (*usecase.GetProductsRes, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*usecase.GetProductsRes)
	return r, args.Error(1)
}

func (m *mockProductUC) ListProducts(ctx context.Context, req *usecase.ListProductsReq) (*usecase.ProductPage, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*usecase.ProductPage)
	return r, args.Error(1)
}

func (m *mockProductUC) GetCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]domain.Category)
	return r, args.Error(1)
}

func (m *mockProductUC) UpdateProduct(ctx context.Context, id int64, req *usecase.UpdateProductReq) (*domain.Product, error) {
	args := m.Called(ctx, id, req)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductUC) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductUC) RateProduct(ctx context.Context, id int64, rating int) (*domain.Product, error) {
	args := m.Called(ctx, id, rating)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductUC) UploadImages(ctx context.Context, images []usecase.ProductImage) (*usecase.UploadImagesRes, error) {
	args := m.Called(ctx, images)
	r, _ := args.Get(0).(*usecase.UploadImagesRes)
	return r, args.Error(1)
}

type mockCartUC struct{ mock.Mock }

func (m *mockCartUC) GetActiveCart(ctx context.Context, userID string) (*usecase.CartView, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(*usecase.CartView)
	return v, args.Error(1)
}

func (m *mockCartUC) GetCart(ctx context.Context, userID string, cartID string) (*usecase.CartView, error) {
	args := m.Called(ctx, userID, cartID)
	v, _ := args.Get(0).(*usecase.CartView)
	return v, args.Error(1)
}

func (m *mockCartUC) AddItem(ctx context.Context, req *usecase.AddCartItemReq) (*usecase.CartView, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*usecase.CartView)
	return v, args.Error(1)
}

func (m *mockCartUC) UpdateQuantity(ctx context.Context, req *usecase.UpdateCartItemReq) (*usecase.CartView, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*usecase.CartView)
	return v, args.Error(1)
}

func (m *mockCartUC) RemoveItem(ctx context.Context, userID string, productID int64) (*usecase.CartView, error) {
	args := m.Called(ctx, userID, productID)
	v, _ := args.Get(0).(*usecase.CartView)
	return v, args.Error(1)
}

func (m *mockCartUC) Clear(ctx context.Context, userID string) (*usecase.CartView, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(*usecase.CartView)
	return v, args.Error(1)
}

func (m *mockCartUC) Deactivate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// stubAuth принимает токены вида "<id>" для пользователей из users.
type stubAuth struct {
	mock.Mock
	users map[string]*domain.User
}

func (s *stubAuth) Register(ctx context.Context, req *usecase.RegisterReq) (*usecase.AuthRes, error) {
	args := s.Called(ctx, req)
	r, _ := args.Get(0).(*usecase.AuthRes)
	return r, args.Error(1)
}

func (s *stubAuth) Login(ctx context.Context, req *usecase.LoginReq) (*usecase.AuthRes, error) {
	args := s.Called(ctx, req)
	r, _ := args.Get(0).(*usecase.AuthRes)
	return r, args.Error(1)
}

func (s *stubAuth) GoogleLogin(ctx context.Context, idToken string) (*usecase.AuthRes, error) {
	args := s.Called(ctx, idToken)
	r, _ := args.Get(0).(*usecase.AuthRes)
	return r, args.Error(1)
}

func (s *stubAuth) Me(_ context.Context, userID string) (*domain.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, e.ErrUserNotFound
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, e.ErrInvalidToken
}

type testAPI struct {
	handler  http.Handler
	products *mockProductUC
	carts    *mockCartUC
	auth     *stubAuth
}

func newTestAPI(t *testing.T, adminOnly bool) *testAPI {
	t.Helper()

	api := &testAPI{
		products: &mockProductUC{},
		carts:    &mockCartUC{},
		auth: &stubAuth{users: map[string]*domain.User{
			"user-1":  {ID: "user-1", Email: "ann@example.com", Name: "Ann", Role: domain.RoleUser},
			"admin-1": {ID: "admin-1", Email: "root@example.com", Name: "Root", Role: domain.RoleAdmin},
		}},
	}

	mux := chi.NewRouter()
	NewRouter(mux, nopLogger{},
		&cfg.HTTPConfig{AllowedOrigins: []string{"*"}, SwaggerURL: "/swagger/doc.json"},
		&cfg.AuthCfg{AdminOnlyProductWrites: adminOnly},
	).Init(api.products, api.carts, api.auth, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	api.handler = mux

	t.Cleanup(func() {
		api.products.AssertExpectations(t)
		api.carts.AssertExpectations(t)
		api.auth.AssertExpectations(t)
	})

	return api
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
