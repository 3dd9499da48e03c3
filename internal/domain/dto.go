package domain

type StatusCount struct {
	Status  OrderStatus `json:"status" db:"status"`
	Orders  int         `json:"orders" db:"orders"`
	Revenue float64     `json:"revenue" db:"revenue"`
}

type ItemSales struct {
	Name     string  `json:"name" db:"name"`
	Quantity int     `json:"quantity" db:"quantity"`
	Revenue  float64 `json:"revenue" db:"revenue"`
}

type SalesReport struct {
	TotalOrders int           `json:"total_orders"`
	PaidRevenue float64       `json:"paid_revenue"`
	ByStatus    []StatusCount `json:"by_status"`
	TopItems    []ItemSales   `json:"top_items"`
	LowStock    []MenuItem    `json:"low_stock"`
}
