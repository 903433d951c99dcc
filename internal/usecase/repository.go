package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	List(ctx context.Context, req *ListProductsReq) ([]domain.Product, int64, error)
	Update(ctx context.Context, id int64, req *UpdateProductReq) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Rate(ctx context.Context, id int64, rating int) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// CartRepository хранит корзины. Save выполняет условную запись по версии
// и возвращает e.ErrCartConflict, если корзину успели изменить.
type CartRepository interface {
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	Create(ctx context.Context, cart *domain.Cart) error
	Save(ctx context.Context, cart *domain.Cart) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleUID(ctx context.Context, uid string) (*domain.User, error)
	LinkGoogleUID(ctx context.Context, id string, uid string) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int, staleAfter time.Duration) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReturnToPending(ctx context.Context, id int64) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	DeleteProducts(ctx context.Context, ids []int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, bucket, key string) error
}
