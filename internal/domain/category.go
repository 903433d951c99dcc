package domain

// Category - категория каталога и количество активных товаров в ней
type Category struct {
	Name         string
	ProductCount int64
}

func NewCategory(name string, productCount int64) *Category {
	return &Category{
		Name:         name,
		ProductCount: productCount,
	}
}
