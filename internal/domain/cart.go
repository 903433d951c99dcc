package domain

import (
	"slices"
	"time"

	"github.com/DRSN-tech/onlinestore/pkg/e"
)

// Cart - корзина пользователя. У пользователя не больше одной активной корзины,
// неактивные корзины не удаляются физически.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	IsActive  bool
	Version   int64 // версия для оптимистичной блокировки
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem - позиция корзины. Price фиксируется в момент добавления.
type CartItem struct {
	ProductID int64
	Quantity  int
	Price     int64
}

func NewCart(userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsNew сообщает, что корзина ещё не сохранена.
func (c *Cart) IsNew() bool {
	return c.ID == ""
}

// AddItem добавляет qty единиц товара. Повторное добавление суммирует количество
// и обновляет цену до текущей цены товара.
func (c *Cart) AddItem(product *Product, qty int) error {
	if qty < 1 {
		return e.ErrInvalidQuantity
	}
	if !product.HasStock(qty) {
		return e.ErrInsufficientStock
	}

	if i := c.indexOf(product.ID); i >= 0 {
		c.Items[i].Quantity += qty
		c.Items[i].Price = product.Price
	} else {
		c.Items = append(c.Items, CartItem{
			ProductID: product.ID,
			Quantity:  qty,
			Price:     product.Price,
		})
	}

	c.touch()
	return nil
}

// UpdateQuantity перезаписывает количество товара, который уже лежит в корзине.
func (c *Cart) UpdateQuantity(product *Product, qty int) error {
	if qty < 1 {
		return e.ErrInvalidQuantity
	}

	i := c.indexOf(product.ID)
	if i < 0 {
		return e.ErrItemNotInCart
	}
	if !product.HasStock(qty) {
		return e.ErrInsufficientStock
	}

	c.Items[i].Quantity = qty
	c.touch()
	return nil
}

// HasItem сообщает, есть ли товар в корзине.
func (c *Cart) HasItem(productID int64) bool {
	return c.indexOf(productID) >= 0
}

// RemoveItem убирает товар из корзины. Отсутствие товара не считается ошибкой.
func (c *Cart) RemoveItem(productID int64) {
	c.Items = slices.DeleteFunc(c.Items, func(it CartItem) bool {
		return it.ProductID == productID
	})
	c.touch()
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.touch()
}

// Deactivate помечает корзину удалённой.
func (c *Cart) Deactivate() {
	c.IsActive = false
	c.touch()
}

// TotalItems - общее количество единиц товара.
func (c *Cart) TotalItems() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// TotalPrice - сумма по зафиксированным ценам, в копейках.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// ProductIDs возвращает идентификаторы товаров в порядке позиций.
func (c *Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func (c *Cart) indexOf(productID int64) int {
	return slices.IndexFunc(c.Items, func(it CartItem) bool {
		return it.ProductID == productID
	})
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
