package http

import (
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/shopspring/decimal"
)

func init() {
	// Цены отдаются JSON-числами. Во входящих запросах принимаются и числа, и строки.
	decimal.MarshalJSONWithoutQuotes = true
}

// REQUESTS

type RegisterRequest struct {
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"secret123"`
	Name     string `json:"name" example:"Ann"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"ann@example.com"`
	Password string `json:"password" example:"secret123"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// CreateProductRequest - цены в рублях, не больше двух знаков после запятой.
type CreateProductRequest struct {
	Name           string            `json:"name" example:"Phone"`
	Description    string            `json:"description"`
	Price          *decimal.Decimal  `json:"price" swaggertype:"number" example:"599.99"`
	OriginalPrice  *decimal.Decimal  `json:"originalPrice,omitempty" swaggertype:"number"`
	Category       string            `json:"category" example:"electronics"`
	Brand          string            `json:"brand"`
	Stock          *int              `json:"stock" example:"10"`
	Images         []string          `json:"images"`
	Tags           []string          `json:"tags"`
	Specifications map[string]string `json:"specifications"`
}

// UpdateProductRequest - отсутствующие поля не меняются.
type UpdateProductRequest struct {
	Name           *string            `json:"name,omitempty"`
	Description    *string            `json:"description,omitempty"`
	Price          *decimal.Decimal   `json:"price,omitempty" swaggertype:"number"`
	OriginalPrice  *decimal.Decimal   `json:"originalPrice,omitempty" swaggertype:"number"`
	Category       *string            `json:"category,omitempty"`
	Brand          *string            `json:"brand,omitempty"`
	Stock          *int               `json:"stock,omitempty"`
	Images         *[]string          `json:"images,omitempty"`
	Tags           *[]string          `json:"tags,omitempty"`
	Specifications *map[string]string `json:"specifications,omitempty"`
	IsActive       *bool              `json:"isActive,omitempty"`
}

type RateProductRequest struct {
	Rating int `json:"rating" example:"5"`
}

type AddToCartRequest struct {
	ProductID int64 `json:"productId" example:"1"`
	Quantity  *int  `json:"quantity,omitempty" example:"1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" example:"2"`
}

// RESPONSES

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResponse struct {
	Message string        `json:"message,omitempty"`
	Token   string        `json:"token"`
	User    *UserResponse `json:"user"`
}

type MeResponse struct {
	User *UserResponse `json:"user"`
}

type ProductResponse struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          decimal.Decimal   `json:"price" swaggertype:"number"`
	OriginalPrice  *decimal.Decimal  `json:"originalPrice,omitempty" swaggertype:"number"`
	Category       string            `json:"category"`
	Brand          string            `json:"brand"`
	Stock          int               `json:"stock"`
	Images         []string          `json:"images"`
	Tags           []string          `json:"tags"`
	Specifications map[string]string `json:"specifications"`
	Rating         float64           `json:"rating"`
	NumReviews     int               `json:"numReviews"`
	IsActive       bool              `json:"isActive"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      *time.Time        `json:"updatedAt,omitempty"`
}

type ProductEnvelope struct {
	Message string           `json:"message,omitempty"`
	Product *ProductResponse `json:"product"`
}

type ProductListResponse struct {
	Products    []ProductResponse `json:"products"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	Total       int64             `json:"total"`
}

type CategoryResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type UploadImagesResponse struct {
	Images []string `json:"images"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// CartProduct - краткие данные товара в позиции корзины.
type CartProduct struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price" swaggertype:"number"`
	Images []string        `json:"images"`
	Stock  int             `json:"stock"`
}

type CartItemResponse struct {
	ProductID int64           `json:"productId"`
	Product   *CartProduct    `json:"product"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price" swaggertype:"number"`
}

type CartResponse struct {
	ID         string             `json:"id"`
	UserID     string             `json:"userId"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice decimal.Decimal    `json:"totalPrice" swaggertype:"number"`
	TotalItems int                `json:"totalItems"`
	IsActive   bool               `json:"isActive"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type CartEnvelope struct {
	Message string        `json:"message,omitempty"`
	Cart    *CartResponse `json:"cart"`
}

// MAPPERS

func (r *CreateProductRequest) toUseCase() (*usecase.CreateProductReq, error) {
	if r.Price == nil {
		return nil, e.ErrPriceMustBePositive
	}
	price, err := decimalToCents(*r.Price)
	if err != nil {
		return nil, err
	}

	originalPrice, err := optionalCents(r.OriginalPrice)
	if err != nil {
		return nil, err
	}

	// Отсутствующий stock считается ошибкой, как и отрицательный.
	stock := -1
	if r.Stock != nil {
		stock = *r.Stock
	}

	req := usecase.NewCreateProductReq(r.Name, price, stock, r.Category, r.Images)
	req.Description = r.Description
	req.OriginalPrice = originalPrice
	req.Brand = r.Brand
	req.Tags = r.Tags
	req.Specifications = r.Specifications

	return req, nil
}

func (r *UpdateProductRequest) toUseCase() (*usecase.UpdateProductReq, error) {
	price, err := optionalCents(r.Price)
	if err != nil {
		return nil, err
	}

	originalPrice, err := optionalCents(r.OriginalPrice)
	if err != nil {
		return nil, err
	}

	return &usecase.UpdateProductReq{
		Name:           r.Name,
		Description:    r.Description,
		Price:          price,
		OriginalPrice:  originalPrice,
		Category:       r.Category,
		Brand:          r.Brand,
		Stock:          r.Stock,
		Images:         r.Images,
		Tags:           r.Tags,
		Specifications: r.Specifications,
		IsActive:       r.IsActive,
	}, nil
}

func optionalCents(d *decimal.Decimal) (*int64, error) {
	if d == nil {
		return nil, nil
	}

	cents, err := decimalToCents(*d)
	if err != nil {
		return nil, err
	}

	return &cents, nil
}

func toUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toProductResponse(p *domain.Product) *ProductResponse {
	res := &ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          domain.CentsToDecimal(p.Price),
		Category:       p.Category,
		Brand:          p.Brand,
		Stock:          p.Stock,
		Images:         nonNil(p.Images),
		Tags:           nonNil(p.Tags),
		Specifications: p.Specifications,
		Rating:         p.Rating,
		NumReviews:     p.NumReviews,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.OriginalPrice != nil {
		op := domain.CentsToDecimal(*p.OriginalPrice)
		res.OriginalPrice = &op
	}
	if res.Specifications == nil {
		res.Specifications = map[string]string{}
	}

	return res
}

func toProductListResponse(page *usecase.ProductPage) *ProductListResponse {
	products := make([]ProductResponse, 0, len(page.Products))
	for i := range page.Products {
		products = append(products, *toProductResponse(&page.Products[i]))
	}

	return &ProductListResponse{
		Products:    products,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		Total:       page.Total,
	}
}

func toCategoriesResponse(categories []domain.Category) *CategoriesResponse {
	res := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, CategoryResponse{Name: c.Name, Count: c.ProductCount})
	}

	return &CategoriesResponse{Categories: res}
}

func toCartResponse(v *usecase.CartView) *CartResponse {
	items := make([]CartItemResponse, 0, len(v.Items))
	for _, it := range v.Items {
		item := CartItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     domain.CentsToDecimal(it.Price),
		}
		if it.Product != nil {
			item.Product = &CartProduct{
				ID:     it.Product.ID,
				Name:   it.Product.Name,
				Price:  domain.CentsToDecimal(it.Product.Price),
				Images: nonNil(it.Product.Images),
				Stock:  it.Product.Stock,
			}
		}
		items = append(items, item)
	}

	return &CartResponse{
		ID:         v.Cart.ID,
		UserID:     v.Cart.UserID,
		Items:      items,
		TotalPrice: domain.CentsToDecimal(v.TotalPrice),
		TotalItems: v.TotalItems,
		IsActive:   v.Cart.IsActive,
		CreatedAt:  v.Cart.CreatedAt,
		UpdatedAt:  v.Cart.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
