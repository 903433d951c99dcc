package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
)

const (
	defaultPage      = 1
	defaultLimit     = 12
	maxLimit         = 100
	defaultSortBy    = "createdAt"
	defaultSortOrder = "desc"
	imagesPrefix     = "products"

	cacheFillTimeout = 500 * time.Millisecond
	// больше cacheFillTimeout: к повторному удалению фоновое заполнение уже завершилось
	cacheReinvalidateDelay = 2 * cacheFillTimeout
)

var allowedSortFields = map[string]struct{}{
	"createdAt":  {},
	"price":      {},
	"rating":     {},
	"name":       {},
	"numReviews": {},
}

// ProductUseCase реализует бизнес-логику каталога товаров.
type ProductUseCase struct {
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	imagesInfra ImagesInfra
	cacheRepo   CacheRepository
	logger      logger.Logger

	reinvalidateDelay time.Duration
}

func NewProductUC(
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	imagesInfra ImagesInfra,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		imagesInfra: imagesInfra,
		cacheRepo:   cacheRepo,
		logger:      logger,

		reinvalidateDelay: cacheReinvalidateDelay,
	}
}

// CreateProduct создаёт товар и событие product.created в одной транзакции.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := p.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := domain.NewProduct(strings.TrimSpace(req.Name), req.Price, req.Stock, strings.TrimSpace(req.Category), req.Images)
	product.Description = req.Description
	product.OriginalPrice = req.OriginalPrice
	product.Brand = req.Brand
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	if req.Specifications != nil {
		product.Specifications = req.Specifications
	}

	var created *domain.Product
	err := runInTx(ctx, p.dbPool, func(ctx context.Context) error {
		var err error
		created, err = p.productRepo.Create(ctx, product)
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductCreated, created.ID, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.logger.Infof("product created: id=%d name=%q", created.ID, created.Name)
	return created, nil
}

// GetProduct возвращает товар по идентификатору, сначала из кэша.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.GetProduct"

	res, err := p.GetProductsInfo(ctx, NewGetProductsReq([]int64{id}))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(res.Products) == 0 {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	return &res.Products[0], nil
}

// GetProductsInfo возвращает товары по их идентификаторам.
// Промахи кэша добираются из БД и в фоне кладутся в кэш.
func (p *ProductUseCase) GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error) {
	const op = "ProductUseCase.GetProductsInfo"

	// Валидация
	if len(req.IDs) == 0 {
		return nil, e.Wrap(op, e.ErrNoProducts)
	}

	// Поиск продуктов в кэше
	cacheProductsMap, err := p.cacheRepo.GetProducts(ctx, req.IDs)
	var nonCacheable []int64
	if err != nil {
		nonCacheable = append(nonCacheable, req.IDs...)
	} else {
		for _, productID := range req.IDs {
			if _, ok := cacheProductsMap[productID]; !ok {
				nonCacheable = append(nonCacheable, productID)
			}
		}
	}

	// Получение продуктов из БД
	var productsFromDB []domain.Product
	if len(nonCacheable) > 0 {
		productsFromDB, err = p.productRepo.GetByIDs(ctx, nonCacheable)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		if len(productsFromDB) > 0 {
			// Фоновое добавление продуктов в кэш
			go func() {
				bgCtx, cancel := context.WithTimeout(context.Background(), cacheFillTimeout)
				defer cancel()

				if err := p.cacheRepo.SetProducts(bgCtx, productsFromDB); err != nil {
					p.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
				}
			}()
		}
	}

	dbProductsMap := make(map[int64]domain.Product, len(productsFromDB))
	for _, product := range productsFromDB {
		dbProductsMap[product.ID] = product
	}

	// Формирование результата в порядке запроса
	result := make([]domain.Product, 0, len(req.IDs))
	notFoundProducts := make([]int64, 0)
	for _, id := range req.IDs {
		if pr, ok := cacheProductsMap[id]; ok {
			result = append(result, pr)
		} else if pr, ok := dbProductsMap[id]; ok {
			result = append(result, pr)
		} else {
			notFoundProducts = append(notFoundProducts, id)
		}
	}

	return NewGetProductsRes(result, notFoundProducts), nil
}

// ListProducts возвращает страницу активных товаров.
func (p *ProductUseCase) ListProducts(ctx context.Context, req *ListProductsReq) (*ProductPage, error) {
	const op = "ProductUseCase.ListProducts"

	normalizeListReq(req)

	products, total, err := p.productRepo.List(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &ProductPage{
		Products:    products,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(req.Limit))),
		CurrentPage: req.Page,
	}, nil
}

func (p *ProductUseCase) GetCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "ProductUseCase.GetCategories"

	categories, err := p.productRepo.Categories(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return categories, nil
}

// UpdateProduct частично обновляет товар.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, id int64, req *UpdateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := p.validateUpdate(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	var updated *domain.Product
	err := runInTx(ctx, p.dbPool, func(ctx context.Context) error {
		var err error
		updated, err = p.productRepo.Update(ctx, id, req)
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductUpdated, id, updated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, id)
	return updated, nil
}

// DeleteProduct удаляет товар. Позиции корзин с этим товаром остаются и показываются без данных товара.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	err := runInTx(ctx, p.dbPool, func(ctx context.Context) error {
		if err := p.productRepo.Delete(ctx, id); err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductDeleted, id, nil)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	p.invalidate(ctx, id)
	return nil
}

// RateProduct добавляет оценку 1..5 и пересчитывает средний рейтинг.
func (p *ProductUseCase) RateProduct(ctx context.Context, id int64, rating int) (*domain.Product, error) {
	const op = "ProductUseCase.RateProduct"

	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, e.Wrap(op, e.ErrInvalidRating)
	}

	var rated *domain.Product
	err := runInTx(ctx, p.dbPool, func(ctx context.Context) error {
		var err error
		rated, err = p.productRepo.Rate(ctx, id, rating)
		if err != nil {
			return err
		}

		return p.writeEvent(ctx, ProductRated, id, rated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, id)
	return rated, nil
}

// UploadImages сохраняет изображения товара в MinIO и возвращает их публичные ссылки.
func (p *ProductUseCase) UploadImages(ctx context.Context, images []ProductImage) (*UploadImagesRes, error) {
	const op = "ProductUseCase.UploadImages"

	if len(images) == 0 {
		return nil, e.Wrap(op, e.ErrNoImages)
	}

	res, err := p.imagesInfra.UploadImages(ctx, NewUploadImagesReq(imagesPrefix, images))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// writeEvent кладёт событие в outbox в рамках текущей транзакции.
func (p *ProductUseCase) writeEvent(ctx context.Context, eventType OutboxEventType, productID int64, product *domain.Product) error {
	event, err := newProductEvent(eventType, productID, product)
	if err != nil {
		return err
	}

	_, err = p.outboxRepo.Create(ctx, event)
	return err
}

// invalidate удаляет из кэша старые данные товара и повторяет удаление через reinvalidateDelay.
// Фоновое заполнение из GetProductsInfo могло прочитать товар до коммита и записать снимок уже после первого удаления.
func (p *ProductUseCase) invalidate(ctx context.Context, id int64) {
	if err := p.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		p.logger.Warnf("Failed to delete product %d from cache: %v", id, err)
	}

	time.AfterFunc(p.reinvalidateDelay, func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), cacheFillTimeout)
		defer cancel()

		if err := p.cacheRepo.DeleteProducts(bgCtx, []int64{id}); err != nil {
			p.logger.Warnf("Failed to re-delete product %d from cache: %v", id, err)
		}
	})
}

// validateProduct проверяет корректность входных данных запроса на добавление продукта.
func (p *ProductUseCase) validateProduct(req *CreateProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if req.Price <= 0 {
		return e.ErrPriceMustBePositive
	}

	if req.Stock < 0 {
		return e.ErrInvalidStock
	}

	if len(req.Images) == 0 {
		return e.ErrNoImages
	}

	return nil
}

func (p *ProductUseCase) validateUpdate(req *UpdateProductReq) error {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return e.ErrProductNameRequired
		}
		req.Name = &trimmed
	}

	if req.Price != nil && *req.Price <= 0 {
		return e.ErrPriceMustBePositive
	}

	if req.Stock != nil && *req.Stock < 0 {
		return e.ErrInvalidStock
	}

	if req.Images != nil && len(*req.Images) == 0 {
		return e.ErrNoImages
	}

	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		category := domain.DefaultCategory
		req.Category = &category
	}

	return nil
}

// normalizeListReq подставляет значения по умолчанию и отбрасывает неизвестные поля сортировки.
func normalizeListReq(req *ListProductsReq) {
	if req.Page < 1 {
		req.Page = defaultPage
	}

	if req.Limit < 1 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}

	if _, ok := allowedSortFields[req.SortBy]; !ok {
		req.SortBy = defaultSortBy
	}

	req.SortOrder = strings.ToLower(req.SortOrder)
	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		req.SortOrder = defaultSortOrder
	}

	req.Category = strings.TrimSpace(req.Category)
	req.Search = strings.TrimSpace(req.Search)
}
