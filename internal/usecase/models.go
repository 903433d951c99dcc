package usecase

import (
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
)

// PRODUCT USECASE

// CreateProductReq - запрос на создание товара.
type CreateProductReq struct {
	Name           string
	Description    string
	Price          int64 // в копейках
	OriginalPrice  *int64
	Category       string
	Brand          string
	Stock          int
	Images         []string
	Tags           []string
	Specifications map[string]string
}

// UpdateProductReq - частичное обновление товара, nil-поля не меняются.
type UpdateProductReq struct {
	Name           *string
	Description    *string
	Price          *int64
	OriginalPrice  *int64
	Category       *string
	Brand          *string
	Stock          *int
	Images         *[]string
	Tags           *[]string
	Specifications *map[string]string
	IsActive       *bool
}

// ListProductsReq - фильтры, сортировка и пагинация каталога.
type ListProductsReq struct {
	Page      int
	Limit     int
	Category  string
	Search    string
	MinPrice  *int64
	MaxPrice  *int64
	SortBy    string
	SortOrder string
}

// ProductPage - страница каталога.
type ProductPage struct {
	Products    []domain.Product
	Total       int64
	TotalPages  int
	CurrentPage int
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type, определённый по содержимому (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// GetProductsReq запрос информации о продуктах по их идентификаторам.
type GetProductsReq struct {
	IDs []int64
}

// GetProductsRes - ответ с данными запрошенных продуктов.
type GetProductsRes struct {
	Products         []domain.Product
	NotFoundProducts []int64
}

// UploadImagesReq - запрос на загрузку изображений товара.
type UploadImagesReq struct {
	Prefix string
	Images []ProductImage
}

// UploadImagesRes - результат загрузки: ключи в MinIO и публичные ссылки.
type UploadImagesRes struct {
	ImagesKeys []string
	URLs       []string
}

// CART USECASE

type AddCartItemReq struct {
	UserID    string
	ProductID int64
	Quantity  int
}

type UpdateCartItemReq struct {
	UserID    string
	ProductID int64
	Quantity  int
}

// CartView - корзина с подставленными данными товаров и итогами.
type CartView struct {
	Cart       *domain.Cart
	Items      []CartItemView
	TotalPrice int64
	TotalItems int
}

// CartItemView - позиция корзины. Product равен nil, если товар удалён из каталога.
type CartItemView struct {
	domain.CartItem
	Product *domain.Product
}

// RetryPolicy задаёт повторы при конфликте версий корзины.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// AUTH USECASE

type RegisterReq struct {
	Email    string
	Password string
	Name     string
}

type LoginReq struct {
	Email    string
	Password string
}

// AuthRes - выданный токен и пользователь.
type AuthRes struct {
	Token string
	User  *domain.User
}

// GoogleIdentity - данные пользователя из проверенного Google ID token.
type GoogleIdentity struct {
	UID           string
	Email         string
	Name          string
	EmailVerified bool
}

// INFRASTRUCTURE

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	ProductCreated OutboxEventType = "product.created"
	ProductUpdated OutboxEventType = "product.updated"
	ProductDeleted OutboxEventType = "product.deleted"
	ProductRated   OutboxEventType = "product.rated"
)

// OutboxEvent - событие об изменении товара, ожидающее отправки в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ProductID   int64
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ProductEventPayload - тело сообщения в топике товаров.
type ProductEventPayload struct {
	EventID    string           `json:"eventId"`
	EventType  OutboxEventType  `json:"eventType"`
	ProductID  int64            `json:"productId"`
	OccurredAt time.Time        `json:"occurredAt"`
	Product    *ProductSnapshot `json:"product,omitempty"`
}

type ProductSnapshot struct {
	Name       string  `json:"name"`
	Price      string  `json:"price"`
	Category   string  `json:"category"`
	Stock      int     `json:"stock"`
	Rating     float64 `json:"rating"`
	NumReviews int     `json:"numReviews"`
	IsActive   bool    `json:"isActive"`
}

// WriteRawMessageReq - уже сериализованное сообщение с ключом партиционирования.
type WriteRawMessageReq struct {
	ProductID int64
	Payload   []byte
}

type CartEventType string

const (
	CartItemAdded   CartEventType = "cart.item_added"
	CartItemUpdated CartEventType = "cart.item_updated"
	CartItemRemoved CartEventType = "cart.item_removed"
	CartCleared     CartEventType = "cart.cleared"
	CartDeactivated CartEventType = "cart.deactivated"
)

// CartEvent - уведомление об изменении корзины.
type CartEvent struct {
	EventID    string        `json:"eventId"`
	Type       CartEventType `json:"type"`
	CartID     string        `json:"cartId"`
	UserID     string        `json:"userId"`
	ProductID  int64         `json:"productId,omitempty"`
	Quantity   int           `json:"quantity,omitempty"`
	TotalItems int           `json:"totalItems"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// MAPPERS

func NewCreateProductReq(name string, price int64, stock int, category string, images []string) *CreateProductReq {
	return &CreateProductReq{
		Name:     name,
		Price:    price,
		Stock:    stock,
		Category: category,
		Images:   images,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewGetProductsReq(ids []int64) *GetProductsReq {
	return &GetProductsReq{ids}
}

func NewGetProductsRes(pr []domain.Product, notFoundProducts []int64) *GetProductsRes {
	return &GetProductsRes{
		Products:         pr,
		NotFoundProducts: notFoundProducts,
	}
}

func NewUploadImagesReq(prefix string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Prefix: prefix,
		Images: images,
	}
}

func NewUploadImagesRes(imagesKeys []string, urls []string) *UploadImagesRes {
	return &UploadImagesRes{
		ImagesKeys: imagesKeys,
		URLs:       urls,
	}
}

func NewAddCartItemReq(userID string, productID int64, qty int) *AddCartItemReq {
	return &AddCartItemReq{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}
}

func NewUpdateCartItemReq(userID string, productID int64, qty int) *UpdateCartItemReq {
	return &UpdateCartItemReq{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}
}

func NewRegisterReq(email, password, name string) *RegisterReq {
	return &RegisterReq{
		Email:    email,
		Password: password,
		Name:     name,
	}
}

func NewLoginReq(email, password string) *LoginReq {
	return &LoginReq{
		Email:    email,
		Password: password,
	}
}

func NewAuthRes(token string, user *domain.User) *AuthRes {
	return &AuthRes{
		Token: token,
		User:  user,
	}
}

func NewWriteRawMessageReq(productID int64, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: productID,
		Payload:   payload,
	}
}
