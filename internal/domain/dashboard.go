package domain

// DashboardStats summarizes the store for the back office
type DashboardStats struct {
	ProductCount   int                 `json:"product_count"`
	OrderCount     int                 `json:"order_count"`
	CustomerCount  int                 `json:"customer_count"`
	Revenue        float64             `json:"revenue"`
	OrdersByStatus map[OrderStatus]int `json:"orders_by_status"`
}
