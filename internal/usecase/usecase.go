package usecase

import (
	"context"

	"github.com/DRSN-tech/onlinestore/internal/domain"
)

type ProductUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error)
	ListProducts(ctx context.Context, req *ListProductsReq) (*ProductPage, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
	UpdateProduct(ctx context.Context, id int64, req *UpdateProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	RateProduct(ctx context.Context, id int64, rating int) (*domain.Product, error)
	UploadImages(ctx context.Context, images []ProductImage) (*UploadImagesRes, error)
}

type CartUC interface {
	GetActiveCart(ctx context.Context, userID string) (*CartView, error)
	GetCart(ctx context.Context, userID string, cartID string) (*CartView, error)
	AddItem(ctx context.Context, req *AddCartItemReq) (*CartView, error)
	UpdateQuantity(ctx context.Context, req *UpdateCartItemReq) (*CartView, error)
	RemoveItem(ctx context.Context, userID string, productID int64) (*CartView, error)
	Clear(ctx context.Context, userID string) (*CartView, error)
	Deactivate(ctx context.Context, userID string) error
}

type AuthUC interface {
	Register(ctx context.Context, req *RegisterReq) (*AuthRes, error)
	Login(ctx context.Context, req *LoginReq) (*AuthRes, error)
	GoogleLogin(ctx context.Context, idToken string) (*AuthRes, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// ProductCatalog - чтение товаров пачкой, используется корзиной для подстановки данных.
type ProductCatalog interface {
	GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error)
}
