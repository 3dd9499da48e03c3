package dto

type MenuItemRequest struct {
	Name       string   `json:"name"`
	Price      *float64 `json:"price"`
	CategoryID *int64   `json:"category_id"`
	ImageURL   string   `json:"image_url"`
	Stock      *int     `json:"stock"`
}

// StockRequest carries a signed stock delta.
type StockRequest struct {
	Quantity *int `json:"quantity"`
}
