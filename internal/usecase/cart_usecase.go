package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/jitter"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"github.com/google/uuid"
)

const publishTimeout = 2 * time.Second

// CartUseCase управляет корзинами: одна активная корзина на пользователя,
// объединение одинаковых позиций, проверка остатка при добавлении и изменении.
// Остаток товара только читается и никогда не резервируется.
type CartUseCase struct {
	cartRepo    CartRepository
	productRepo ProductRepository
	catalog     ProductCatalog
	publisher   CartEventPublisher
	retry       RetryPolicy
	logger      logger.Logger
}

func NewCartUC(
	cartRepo CartRepository,
	productRepo ProductRepository,
	catalog ProductCatalog,
	publisher CartEventPublisher,
	retry RetryPolicy,
	logger logger.Logger,
) *CartUseCase {
	if retry.MaxRetries < 1 {
		retry.MaxRetries = 1
	}

	return &CartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		catalog:     catalog,
		publisher:   publisher,
		retry:       retry,
		logger:      logger,
	}
}

// GetActiveCart возвращает активную корзину пользователя, создавая пустую при её отсутствии.
func (c *CartUseCase) GetActiveCart(ctx context.Context, userID string) (*CartView, error) {
	const op = "CartUseCase.GetActiveCart"

	cart, err := c.cartRepo.GetActiveByUser(ctx, userID)
	if errors.Is(err, e.ErrCartNotFound) {
		cart, err = c.createEmpty(ctx, userID)
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return c.view(ctx, cart), nil
}

// GetCart возвращает корзину по идентификатору, в том числе неактивную.
// Чужая корзина считается ненайденной.
func (c *CartUseCase) GetCart(ctx context.Context, userID string, cartID string) (*CartView, error) {
	const op = "CartUseCase.GetCart"

	cart, err := c.cartRepo.GetByID(ctx, cartID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if cart.UserID != userID {
		return nil, e.Wrap(op, e.ErrCartNotFound)
	}

	return c.view(ctx, cart), nil
}

// AddItem добавляет товар в активную корзину, создавая её при необходимости.
func (c *CartUseCase) AddItem(ctx context.Context, req *AddCartItemReq) (*CartView, error) {
	const op = "CartUseCase.AddItem"

	if req.Quantity < 1 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	product, err := c.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !product.HasStock(req.Quantity) {
		return nil, e.Wrap(op, e.ErrInsufficientStock)
	}

	cart, err := c.mutate(ctx, req.UserID, true, func(cart *domain.Cart) error {
		return cart.AddItem(product, req.Quantity)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.publish(ctx, CartItemAdded, cart, req.ProductID, req.Quantity)
	return c.view(ctx, cart), nil
}

// UpdateQuantity перезаписывает количество товара в активной корзине.
func (c *CartUseCase) UpdateQuantity(ctx context.Context, req *UpdateCartItemReq) (*CartView, error) {
	const op = "CartUseCase.UpdateQuantity"

	if req.Quantity < 1 {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}

	var product *domain.Product
	cart, err := c.mutate(ctx, req.UserID, false, func(cart *domain.Cart) error {
		if !cart.HasItem(req.ProductID) {
			return e.ErrItemNotInCart
		}

		if product == nil {
			var err error
			product, err = c.productRepo.GetByID(ctx, req.ProductID)
			if err != nil {
				return err
			}
		}

		return cart.UpdateQuantity(product, req.Quantity)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.publish(ctx, CartItemUpdated, cart, req.ProductID, req.Quantity)
	return c.view(ctx, cart), nil
}

// RemoveItem убирает товар из активной корзины.
func (c *CartUseCase) RemoveItem(ctx context.Context, userID string, productID int64) (*CartView, error) {
	const op = "CartUseCase.RemoveItem"

	cart, err := c.mutate(ctx, userID, false, func(cart *domain.Cart) error {
		cart.RemoveItem(productID)
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.publish(ctx, CartItemRemoved, cart, productID, 0)
	return c.view(ctx, cart), nil
}

// Clear очищает активную корзину.
func (c *CartUseCase) Clear(ctx context.Context, userID string) (*CartView, error) {
	const op = "CartUseCase.Clear"

	cart, err := c.mutate(ctx, userID, false, func(cart *domain.Cart) error {
		cart.Clear()
		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.publish(ctx, CartCleared, cart, 0, 0)
	return c.view(ctx, cart), nil
}

// Deactivate помечает активную корзину удалённой. Корзина остаётся доступной по идентификатору.
func (c *CartUseCase) Deactivate(ctx context.Context, userID string) error {
	const op = "CartUseCase.Deactivate"

	cart, err := c.mutate(ctx, userID, false, func(cart *domain.Cart) error {
		cart.Deactivate()
		return nil
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	c.publish(ctx, CartDeactivated, cart, 0, 0)
	return nil
}

// mutate читает активную корзину, применяет fn и сохраняет результат с проверкой версии.
// При конфликте версий операция повторяется с экспоненциальной задержкой.
// create разрешает создать корзину, если активной нет.
func (c *CartUseCase) mutate(ctx context.Context, userID string, create bool, fn func(cart *domain.Cart) error) (*domain.Cart, error) {
	backoff := jitter.Backoff{Base: c.retry.BaseDelay, Max: c.retry.MaxDelay, Factor: jitter.DefaultJitter}

	for attempt := 0; attempt < c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := backoff.Wait(ctx, attempt-1); err != nil {
				return nil, err
			}
		}

		cart, err := c.cartRepo.GetActiveByUser(ctx, userID)
		if err != nil {
			if !create || !errors.Is(err, e.ErrCartNotFound) {
				return nil, err
			}
			cart = domain.NewCart(userID)
		}

		if err := fn(cart); err != nil {
			return nil, err
		}

		if cart.IsNew() {
			err = c.cartRepo.Create(ctx, cart)
		} else {
			err = c.cartRepo.Save(ctx, cart)
		}

		switch {
		case err == nil:
			return cart, nil
		case errors.Is(err, e.ErrCartConflict), errors.Is(err, e.ErrCartAlreadyExists):
			c.logger.Debugf("cart of user %s changed concurrently, attempt %d/%d", userID, attempt+1, c.retry.MaxRetries)
			continue
		default:
			return nil, err
		}
	}

	c.logger.Warnf("cart of user %s: retries exhausted", userID)
	return nil, e.ErrCartConflict
}

// createEmpty создаёт пустую активную корзину. Если её параллельно создал другой запрос,
// возвращается уже существующая.
func (c *CartUseCase) createEmpty(ctx context.Context, userID string) (*domain.Cart, error) {
	cart := domain.NewCart(userID)

	err := c.cartRepo.Create(ctx, cart)
	if errors.Is(err, e.ErrCartAlreadyExists) {
		return c.cartRepo.GetActiveByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	return cart, nil
}

// view подставляет в позиции данные товаров. Ошибка каталога не ломает ответ:
// позиции возвращаются без данных товара.
func (c *CartUseCase) view(ctx context.Context, cart *domain.Cart) *CartView {
	products := make(map[int64]domain.Product, len(cart.Items))
	if len(cart.Items) > 0 {
		res, err := c.catalog.GetProductsInfo(ctx, NewGetProductsReq(cart.ProductIDs()))
		if err != nil {
			c.logger.Warnf("failed to load products for cart %s: %v", cart.ID, err)
		} else {
			for _, pr := range res.Products {
				products[pr.ID] = pr
			}
		}
	}

	items := make([]CartItemView, 0, len(cart.Items))
	for _, it := range cart.Items {
		item := CartItemView{CartItem: it}
		if pr, ok := products[it.ProductID]; ok {
			item.Product = &pr
		}
		items = append(items, item)
	}

	return &CartView{
		Cart:       cart,
		Items:      items,
		TotalPrice: cart.TotalPrice(),
		TotalItems: cart.TotalItems(),
	}
}

// publish отправляет событие корзины. Ошибки только логируются.
func (c *CartUseCase) publish(ctx context.Context, eventType CartEventType, cart *domain.Cart, productID int64, qty int) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := &CartEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		CartID:     cart.ID,
		UserID:     cart.UserID,
		ProductID:  productID,
		Quantity:   qty,
		TotalItems: cart.TotalItems(),
		OccurredAt: time.Now().UTC(),
	}

	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warnf("failed to publish %s for cart %s: %v", eventType, cart.ID, err)
	}
}
