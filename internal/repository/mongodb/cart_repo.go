package mongodb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/jimlawless/whereami"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CartsCollection = "carts"

	activeCartIndex = "uniq_active_cart_per_user"
)

// CartRepo хранит корзины в MongoDB.
// Save записывает корзину только если её версия не изменилась с момента чтения.
type CartRepo struct {
	coll *mongo.Collection
}

func NewCartRepo(db *mongo.Database) *CartRepo {
	return &CartRepo{coll: db.Collection(CartsCollection)}
}

// EnsureIndexes создаёт индексы коллекции. Частичный уникальный индекс
// не даёт завести вторую активную корзину пользователю.
func (r *CartRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName(activeCartIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "is_active", Value: true}}),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_carts"),
		},
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (r *CartRepo) GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.findOne(ctx, bson.D{{Key: "user_id", Value: userID}, {Key: "is_active", Value: true}})
}

// GetByID возвращает корзину по идентификатору независимо от её активности.
func (r *CartRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, e.ErrCartNotFound
	}

	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// Create сохраняет новую корзину и проставляет ей идентификатор.
// Если у пользователя уже есть активная корзина, возвращается e.ErrCartAlreadyExists.
func (r *CartRepo) Create(ctx context.Context, cart *domain.Cart) error {
	model, err := toCartModel(cart)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	model.ID = primitive.NewObjectID()
	model.Version = 0

	if _, err := r.coll.InsertOne(ctx, model); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return e.ErrCartAlreadyExists
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	cart.ID = model.ID.Hex()
	cart.Version = 0
	return nil
}

// Save перезаписывает содержимое корзины при совпадении версии и увеличивает версию.
// Несовпадение версии возвращает e.ErrCartConflict.
func (r *CartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	model, err := toCartModel(cart)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	filter := bson.D{{Key: "_id", Value: model.ID}, {Key: "version", Value: model.Version}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "items", Value: model.Items},
			{Key: "is_active", Value: model.IsActive},
			{Key: "updated_at", Value: model.UpdatedAt},
		}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return e.ErrCartAlreadyExists
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if res.MatchedCount == 0 {
		return e.ErrCartConflict
	}

	cart.Version++
	return nil
}

func (r *CartRepo) findOne(ctx context.Context, filter bson.D) (*domain.Cart, error) {
	var model CartModel
	if err := r.coll.FindOne(ctx, filter).Decode(&model); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, e.ErrCartNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model.CreatedAt = model.CreatedAt.UTC()
	model.UpdatedAt = model.UpdatedAt.UTC()
	return toCartEntity(&model), nil
}
