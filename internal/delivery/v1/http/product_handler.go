package http

import (
	"net/http"

	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Активные товары с фильтрами, сортировкой и пагинацией
//	@Tags			products
//	@Produce		json
//	@Param			page		query		int		false	"Номер страницы"	default(1)
//	@Param			limit		query		int		false	"Размер страницы"	default(12)
//	@Param			category	query		string	false	"Категория"
//	@Param			search		query		string	false	"Полнотекстовый поиск"
//	@Param			minPrice	query		number	false	"Минимальная цена"
//	@Param			maxPrice	query		number	false	"Максимальная цена"
//	@Param			sortBy		query		string	false	"Поле сортировки"	Enums(createdAt, price, rating, name, numReviews)
//	@Param			sortOrder	query		string	false	"Направление"		Enums(asc, desc)
//	@Success		200			{object}	ProductListResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.listProducts"

	req, err := parseListQuery(r)
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	page, err := p.productUsecase.ListProducts(r.Context(), req)
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductListResponse(page))
}

func parseListQuery(r *http.Request) (*usecase.ListProductsReq, error) {
	q := r.URL.Query()

	page, err := queryInt(r, "page", 0)
	if err != nil {
		return nil, err
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return nil, err
	}

	minPrice, err := queryPrice(r, "minPrice")
	if err != nil {
		return nil, err
	}

	maxPrice, err := queryPrice(r, "maxPrice")
	if err != nil {
		return nil, err
	}

	return &usecase.ListProductsReq{
		Page:      page,
		Limit:     limit,
		Category:  q.Get("category"),
		Search:    q.Get("search"),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}, nil
}

// getCategories
//
//	@Summary	Категории товаров
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	CategoriesResponse
//	@Router		/products/categories [get]
func (p *ProductHandler) getCategories(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.getCategories"

	categories, err := p.productUsecase.GetCategories(r.Context())
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoriesResponse(categories))
}

// getProduct
//
//	@Summary	Товар по id
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	ProductEnvelope
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.getProduct"

	id, err := pathInt64(r, "id")
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &ProductEnvelope{Product: toProductResponse(product)})
}

// createProduct
//
//	@Summary		Создание товара
//	@Description	Ссылки на изображения получают через POST /products/images
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		CreateProductRequest	true	"Товар"
//	@Success		201		{object}	ProductEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.createProduct"

	var body CreateProductRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(), req)
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, &ProductEnvelope{
		Message: "product created",
		Product: toProductResponse(product),
	})
}

// uploadImages
//
//	@Summary		Загрузка изображений товара
//	@Description	До 10 файлов jpeg/png/webp, не больше 15 МиБ каждый
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			images	formData	file	true	"Изображения товара"
//	@Success		201		{object}	UploadImagesResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		415		{object}	ErrorResponse
//	@Router			/products/images [post]
func (p *ProductHandler) uploadImages(w http.ResponseWriter, r *http.Request) {
	const (
		op                  = "ProductHandler.uploadImages"
		maxTotalRequestSize = 160 << 20
		maxMemory           = 32 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	images, err := parseImages(r.MultipartForm.File["images"])
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	res, err := p.productUsecase.UploadImages(r.Context(), images)
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, &UploadImagesResponse{Images: res.URLs})
}

// updateProduct
//
//	@Summary	Частичное обновление товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int						true	"ID товара"
//	@Param		body	body		UpdateProductRequest	true	"Изменяемые поля"
//	@Success	200		{object}	ProductEnvelope
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.updateProduct"

	id, err := pathInt64(r, "id")
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	var body UpdateProductRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), id, req)
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &ProductEnvelope{
		Message: "product updated",
		Product: toProductResponse(product),
	})
}

// deleteProduct
//
//	@Summary	Удаление товара
//	@Tags		products
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	MessageResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.deleteProduct"

	id, err := pathInt64(r, "id")
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &MessageResponse{Message: "product deleted"})
}

// rateProduct
//
//	@Summary	Оценка товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int					true	"ID товара"
//	@Param		body	body		RateProductRequest	true	"Оценка 1..5"
//	@Success	200		{object}	ProductEnvelope
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/products/{id}/rate [post]
func (p *ProductHandler) rateProduct(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.rateProduct"

	id, err := pathInt64(r, "id")
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	var body RateProductRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	product, err := p.productUsecase.RateProduct(r.Context(), id, body.Rating)
	if err != nil {
		respondError(p.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &ProductEnvelope{
		Message: "rating saved",
		Product: toProductResponse(product),
	})
}

// currentUser достаёт пользователя, положенного Authenticator.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := userFromCtx(r.Context())
	if !ok {
		WriteError(w, e.ErrUnauthorized)
		return "", false
	}
	return user.ID, true
}
