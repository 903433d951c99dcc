package mongodb

import (
	"testing"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartModel_Conversion(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	cart := &domain.Cart{
		ID:       primitive.NewObjectID().Hex(),
		UserID:   "u1",
		Items:    []domain.CartItem{{ProductID: 1, Quantity: 2, Price: 1000}, {ProductID: 2, Quantity: 1, Price: 50}},
		IsActive: true,
		Version:  4,

		CreatedAt: now,
		UpdatedAt: now,
	}

	model, err := toCartModel(cart)
	require.NoError(t, err)

	data, err := bson.Marshal(model)
	require.NoError(t, err)

	var decoded CartModel
	require.NoError(t, bson.Unmarshal(data, &decoded))
	decoded.CreatedAt = decoded.CreatedAt.UTC()
	decoded.UpdatedAt = decoded.UpdatedAt.UTC()

	assert.Equal(t, cart, toCartEntity(&decoded))
}

func TestCartModel_InvalidID(t *testing.T) {
	_, err := toCartModel(&domain.Cart{ID: "bad"})
	assert.Error(t, err)
}

func TestCartModel_EmptyItemsStayEmpty(t *testing.T) {
	model, err := toCartModel(domain.NewCart("u1"))
	require.NoError(t, err)
	assert.NotNil(t, model.Items)
	assert.True(t, model.ID.IsZero())
}
