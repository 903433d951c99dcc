package converter

import "github.com/DRSN-tech/onlinestore/internal/domain"

type ProductConverter interface {
	ToRedisModel(entity *domain.Product) *ProductRedisModel
	ToEntity(model *ProductRedisModel) *domain.Product
	ToArrRedisModel(entities []domain.Product) []ProductRedisModel
}

type productConverter struct{}

func NewProductConverter() ProductConverter { return productConverter{} }

func (productConverter) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	return &ProductRedisModel{
		ID:             entity.ID,
		Name:           entity.Name,
		Description:    entity.Description,
		Price:          entity.Price,
		OriginalPrice:  entity.OriginalPrice,
		Category:       entity.Category,
		Brand:          entity.Brand,
		Stock:          entity.Stock,
		Images:         entity.Images,
		Tags:           entity.Tags,
		Specifications: entity.Specifications,
		Rating:         entity.Rating,
		NumReviews:     entity.NumReviews,
		IsActive:       entity.IsActive,
		CreatedAt:      entity.CreatedAt,
		UpdatedAt:      entity.UpdatedAt,
	}
}

func (productConverter) ToEntity(model *ProductRedisModel) *domain.Product {
	return &domain.Product{
		ID:             model.ID,
		Name:           model.Name,
		Description:    model.Description,
		Price:          model.Price,
		OriginalPrice:  model.OriginalPrice,
		Category:       model.Category,
		Brand:          model.Brand,
		Stock:          model.Stock,
		Images:         model.Images,
		Tags:           model.Tags,
		Specifications: model.Specifications,
		Rating:         model.Rating,
		NumReviews:     model.NumReviews,
		IsActive:       model.IsActive,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

func (c productConverter) ToArrRedisModel(entities []domain.Product) []ProductRedisModel {
	out := make([]ProductRedisModel, 0, len(entities))
	for i := range entities {
		out = append(out, *c.ToRedisModel(&entities[i]))
	}
	return out
}
