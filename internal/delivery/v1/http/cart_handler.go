package http

import (
	"net/http"

	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartUsecase usecase.CartUC
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, logger: logger}
}

// getCart
//
//	@Summary		Активная корзина
//	@Description	Создаёт пустую корзину, если активной нет
//	@Tags			cart
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	CartEnvelope
//	@Failure		401	{object}	ErrorResponse
//	@Router			/cart [get]
func (c *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.getCart"

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	view, err := c.cartUsecase.GetActiveCart(r.Context(), userID)
	if err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &CartEnvelope{Cart: toCartResponse(view)})
}

// getCartByID
//
//	@Summary		Корзина по id
//	@Description	Доступна только владельцу, включая неактивные корзины
//	@Tags			cart
//	@Produce		json
//	@Security		BearerAuth
//	@Param			cartId	path		string	true	"ID корзины"
//	@Success		200		{object}	CartEnvelope
//	@Failure		404		{object}	ErrorResponse
//	@Router			/cart/{cartId} [get]
func (c *CartHandler) getCartByID(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.getCartByID"

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	view, err := c.cartUsecase.GetCart(r.Context(), userID, chi.URLParam(r, "cartId"))
	if err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &CartEnvelope{Cart: toCartResponse(view)})
}

// addItem
//
//	@Summary		Добавление товара в корзину
//	@Description	Повторное добавление суммирует количество и обновляет цену
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		AddToCartRequest	true	"Товар и количество (по умолчанию 1)"
//	@Success		200		{object}	CartEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/cart/add [post]
func (c *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.addItem"

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var body AddToCartRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	qty := 1
	if body.Quantity != nil {
		qty = *body.Quantity
	}

	view, err := c.cartUsecase.AddItem(r.Context(), usecase.NewAddCartItemReq(userID, body.ProductID, qty))
	if err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &CartEnvelope{Message: "item added to cart", Cart: toCartResponse(view)})
}

// updateQuantity
//
//	@Summary	Изменение количества товара
//	@Tags		cart
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		productId	path		int						true	"ID товара"
//	@Param		body		body		UpdateQuantityRequest	true	"Новое количество"
//	@Success	200			{object}	CartEnvelope
//	@Failure	400			{object}	ErrorResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/cart/update/{productId} [put]
func (c *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.updateQuantity"

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	productID, err := pathInt64(r, "productId")
	if err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	var body UpdateQuantityRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	view, err := c.cartUsecase.UpdateQuantity(r.Context(), usecase.NewUpdateCartItemReq(userID, productID, body.Quantity))
	if err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &CartEnvelope{Message: "quantity updated", Cart: toCartResponse(view)})
}

// removeItem
//
//	@Summary	Удаление товара из корзины
//	@Tags		cart
//	@Produce	json
//	@Security	BearerAuth
//	@Param		productId	path		int	true	"ID товара"
//	@Success	200			{object}	CartEnvelope
//	@Failure	404			{object}	ErrorResponse
//	@Router		/cart/remove/{productId} [delete]
func (c *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.removeItem"

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	productID, err := pathInt64(r, "productId")
	if err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	view, err := c.cartUsecase.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &CartEnvelope{Message: "item removed from cart", Cart: toCartResponse(view)})
}

// clearCart
//
//	@Summary	Очистка корзины
//	@Tags		cart
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	CartEnvelope
//	@Failure	404	{object}	ErrorResponse
//	@Router		/cart/clear [delete]
func (c *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.clearCart"

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	view, err := c.cartUsecase.Clear(r.Context(), userID)
	if err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &CartEnvelope{Message: "cart cleared", Cart: toCartResponse(view)})
}

// deleteCart
//
//	@Summary		Удаление корзины
//	@Description	Корзина помечается неактивной, следующий запрос создаст новую
//	@Tags			cart
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	MessageResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/cart [delete]
func (c *CartHandler) deleteCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.deleteCart"

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := c.cartUsecase.Deactivate(r.Context(), userID); err != nil {
		respondError(c.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &MessageResponse{Message: "cart deleted"})
}
