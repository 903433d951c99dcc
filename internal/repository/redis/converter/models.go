package converter

import "time"

// ProductRedisModel - товар в кэше, сериализуется в JSON.
type ProductRedisModel struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          int64             `json:"price"`
	OriginalPrice  *int64            `json:"original_price,omitempty"`
	Category       string            `json:"category"`
	Brand          string            `json:"brand"`
	Stock          int               `json:"stock"`
	Images         []string          `json:"images"`
	Tags           []string          `json:"tags"`
	Specifications map[string]string `json:"specifications"`
	Rating         float64           `json:"rating"`
	NumReviews     int               `json:"num_reviews"`
	IsActive       bool              `json:"is_active"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      *time.Time        `json:"updated_at,omitempty"`
}
