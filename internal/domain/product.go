package domain

import (
	"errors"
	"time"
)

type Category string

const (
	CategoryPhones      Category = "Phones"
	CategoryLaptops     Category = "Laptops"
	CategoryTv          Category = "Tv"
	CategoryAccessories Category = "Accessories"
	CategoryIpads       Category = "Ipads"
	CategoryWatches     Category = "Watches"
)

var Categories = []Category{
	CategoryPhones,
	CategoryLaptops,
	CategoryTv,
	CategoryAccessories,
	CategoryIpads,
	CategoryWatches,
}

func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

var (
	ErrProductNameRequired = errors.New("product name is required")
	ErrNegativePrice       = errors.New("price must not be negative")
	ErrNegativeStock       = errors.New("stock must not be negative")
	ErrUnknownCategory     = errors.New("unknown category")
)

// Product prices are integer cents.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Category    Category  `json:"category,omitempty"`
	MediaID     *string   `json:"media_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrProductNameRequired
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	if p.Category != "" && !ValidCategory(p.Category) {
		return ErrUnknownCategory
	}
	return nil
}
