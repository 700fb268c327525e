package order

import "context"

// Product is a search result row as returned by the platform
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"productCode"`
	Category string `json:"family"`
}

// Result is the outcome of a successful order creation
type Result struct {
	OrderNumber string `json:"orderNumber"`
	OrderID     string `json:"orderId,omitempty"`
}

// Catalog is the product-order contract of the platform backend
type Catalog interface {
	SearchProducts(ctx context.Context, term, category string, offset, limit int) ([]Product, error)
	CountProducts(ctx context.Context, term, category string) (int, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateOrder(ctx context.Context, parentID string, lines []Line) (*Result, error)
}

// CategoryOption is an entry of the category selector
type CategoryOption struct {
	Label string
	Value string
}

// AllCategories is the selector option that disables category filtering
var AllCategories = CategoryOption{Label: "All Categories", Value: ""}

func categoryOptions(categories []string) []CategoryOption {
	opts := make([]CategoryOption, 0, len(categories)+1)
	opts = append(opts, AllCategories)
	for _, c := range categories {
		opts = append(opts, CategoryOption{Label: c, Value: c})
	}
	return opts
}
