package mongodb

import (
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartModel - документ коллекции carts.
type CartModel struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Items     []CartItemModel    `bson:"items"`
	IsActive  bool               `bson:"is_active"`
	Version   int64              `bson:"version"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type CartItemModel struct {
	ProductID int64 `bson:"product_id"`
	Quantity  int   `bson:"quantity"`
	Price     int64 `bson:"price"`
}

func toCartModel(cart *domain.Cart) (*CartModel, error) {
	model := &CartModel{
		UserID:    cart.UserID,
		Items:     make([]CartItemModel, 0, len(cart.Items)),
		IsActive:  cart.IsActive,
		Version:   cart.Version,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}

	if cart.ID != "" {
		id, err := primitive.ObjectIDFromHex(cart.ID)
		if err != nil {
			return nil, err
		}
		model.ID = id
	}

	for _, it := range cart.Items {
		model.Items = append(model.Items, CartItemModel{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return model, nil
}

func toCartEntity(model *CartModel) *domain.Cart {
	cart := &domain.Cart{
		ID:        model.ID.Hex(),
		UserID:    model.UserID,
		Items:     make([]domain.CartItem, 0, len(model.Items)),
		IsActive:  model.IsActive,
		Version:   model.Version,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}

	for _, it := range model.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return cart
}
