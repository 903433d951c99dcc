package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultCategory = "other"
	MinRating       = 1
	MaxRating       = 5
)

// Product описывает товар каталога
type Product struct {
	ID             int64
	Name           string
	Description    string
	Price          int64  // Цена хранится в копейках
	OriginalPrice  *int64 // Цена до скидки, в копейках
	Category       string
	Brand          string
	Stock          int
	Images         []string
	Tags           []string
	Specifications map[string]string
	Rating         float64 // Среднее по всем оценкам, 0..5
	NumReviews     int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func NewProduct(name string, price int64, stock int, category string, images []string) *Product {
	if category == "" {
		category = DefaultCategory
	}

	return &Product{
		Name:           name,
		Price:          price,
		Stock:          stock,
		Category:       category,
		Images:         images,
		Tags:           []string{},
		Specifications: map[string]string{},
		IsActive:       true,
	}
}

// HasStock сообщает, хватает ли остатка на qty единиц.
func (p *Product) HasStock(qty int) bool {
	return p.Stock >= qty
}

// CentsToDecimal переводит копейки в денежное значение.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DecimalToCents переводит денежное значение в копейки с округлением до двух знаков.
func DecimalToCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}
