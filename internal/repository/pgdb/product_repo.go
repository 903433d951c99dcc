package pgdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

const productColumns = `id, name, description, price, original_price, category, brand, stock,
	images, tags, specifications, rating, num_reviews, is_active, created_at, updated_at`

// sortColumns сопоставляет поля сортировки API с колонками таблицы.
var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"price":      "price",
	"rating":     "rating",
	"name":       "name",
	"numReviews": "num_reviews",
}

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool Pool
	conv converter.ProductConverter
	cats converter.CategoryConverter
}

func NewProductRepo(pool Pool, conv converter.ProductConverter, cats converter.CategoryConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
		cats: cats,
	}
}

// Create добавляет товар. Вызывается внутри транзакции вместе с записью в outbox.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := p.conv.ToModel(product)
	query := `
		INSERT INTO products (
			name, description, price, original_price, category, brand, stock,
			images, tags, specifications, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + productColumns

	created, err := scanProduct(tx.QueryRow(ctx, query,
		model.Name,
		model.Description,
		model.Price,
		model.OriginalPrice,
		model.Category,
		model.Brand,
		model.Stock,
		model.Images,
		model.Tags,
		model.Specifications,
		model.IsActive,
	))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(created), nil
}

// GetByID возвращает товар, в том числе неактивный.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	model, err := scanProduct(tr.Executor(ctx, p.pool).QueryRow(ctx, query, id))
	if err != nil {
		if noRows(err) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// GetByIDs возвращает найденные товары. Отсутствующие идентификаторы пропускаются.
func (p *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := p.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := collectProducts(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

// List возвращает страницу активных товаров и общее число подходящих под фильтр.
// Запрос должен быть нормализован: SortBy из допустимого списка, Limit > 0.
func (p *ProductRepo) List(ctx context.Context, req *usecase.ListProductsReq) ([]domain.Product, int64, error) {
	where, args := listFilter(req)

	var total int64
	countQuery := `SELECT COUNT(*) FROM products WHERE ` + where
	if err := p.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	if total == 0 {
		return []domain.Product{}, 0, nil
	}

	column, ok := sortColumns[req.SortBy]
	if !ok {
		column = sortColumns["createdAt"]
	}
	direction := "DESC"
	if req.SortOrder == "asc" {
		direction = "ASC"
	}

	args = append(args, req.Limit, (req.Page-1)*req.Limit)
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		productColumns, where, column, direction, direction, len(args)-1, len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := collectProducts(rows)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), total, nil
}

// Update меняет только переданные поля.
func (p *ProductRepo) Update(ctx context.Context, id int64, req *usecase.UpdateProductReq) (*domain.Product, error) {
	sets, args := updateSet(req)
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), productColumns)

	model, err := scanProduct(tr.Executor(ctx, p.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if noRows(err) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := tr.Executor(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.ErrProductNotFound
	}

	return nil
}

// Rate атомарно пересчитывает средний рейтинг с учётом новой оценки.
func (p *ProductRepo) Rate(ctx context.Context, id int64, rating int) (*domain.Product, error) {
	query := `
		UPDATE products
		SET rating = (rating * num_reviews + $2) / (num_reviews + 1),
			num_reviews = num_reviews + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	model, err := scanProduct(tr.Executor(ctx, p.pool).QueryRow(ctx, query, id, rating))
	if err != nil {
		if noRows(err) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// Categories возвращает категории активных товаров с количеством товаров в каждой.
func (p *ProductRepo) Categories(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT category, COUNT(*) AS product_count
		FROM products
		WHERE is_active
		GROUP BY category
		ORDER BY category
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []*converter.CategoryModel
	for rows.Next() {
		var model converter.CategoryModel
		if err := rows.Scan(&model.Name, &model.ProductCount); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.cats.ToArrEntity(models), nil
}

// listFilter собирает условие WHERE и его аргументы.
func listFilter(req *usecase.ListProductsReq) (string, []any) {
	conds := []string{"is_active"}
	var args []any

	if req.Category != "" {
		args = append(args, req.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}

	if req.Search != "" {
		args = append(args, req.Search)
		conds = append(conds, fmt.Sprintf("search_vector @@ plainto_tsquery('simple', $%d)", len(args)))
	}

	if req.MinPrice != nil {
		args = append(args, *req.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}

	if req.MaxPrice != nil {
		args = append(args, *req.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// updateSet собирает SET для частичного обновления. updated_at меняется всегда.
func updateSet(req *usecase.UpdateProductReq) ([]string, []any) {
	var (
		sets []string
		args []any
	)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Price != nil {
		add("price", *req.Price)
	}
	if req.OriginalPrice != nil {
		add("original_price", *req.OriginalPrice)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.Brand != nil {
		add("brand", *req.Brand)
	}
	if req.Stock != nil {
		add("stock", *req.Stock)
	}
	if req.Images != nil {
		add("images", *req.Images)
	}
	if req.Tags != nil {
		add("tags", *req.Tags)
	}
	if req.Specifications != nil {
		add("specifications", *req.Specifications)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}

	sets = append(sets, "updated_at = NOW()")
	return sets, args
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var m converter.ProductModel
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Price, &m.OriginalPrice, &m.Category, &m.Brand, &m.Stock,
		&m.Images, &m.Tags, &m.Specifications, &m.Rating, &m.NumReviews, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func collectProducts(rows pgx.Rows) ([]*converter.ProductModel, error) {
	defer rows.Close()

	var models []*converter.ProductModel
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}

	return models, rows.Err()
}
