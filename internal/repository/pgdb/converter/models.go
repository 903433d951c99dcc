package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID             int64             `db:"id"`
	Name           string            `db:"name"`
	Description    string            `db:"description"`
	Price          int64             `db:"price"`
	OriginalPrice  *int64            `db:"original_price"`
	Category       string            `db:"category"`
	Brand          string            `db:"brand"`
	Stock          int               `db:"stock"`
	Images         []string          `db:"images"`
	Tags           []string          `db:"tags"`
	Specifications map[string]string `db:"specifications"`
	Rating         float64           `db:"rating"`
	NumReviews     int               `db:"num_reviews"`
	IsActive       bool              `db:"is_active"`
	CreatedAt      time.Time         `db:"created_at"`
	UpdatedAt      *time.Time        `db:"updated_at"`
}

// CategoryModel - строка агрегата по категориям.
type CategoryModel struct {
	Name         string `db:"category"`
	ProductCount int64  `db:"product_count"`
}

// UserModel представляет запись таблицы users в PostgreSQL.
type UserModel struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash *string    `db:"password_hash"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	GoogleUID    *string    `db:"google_uid"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	ProductID   int64      `db:"product_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	Attempts    int        `db:"attempts"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
