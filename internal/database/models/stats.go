package models

// OwnerStats aggregates read-side totals across all properties a user
// owns. No mutation is involved in computing it.
type OwnerStats struct {
	TotalProperties  int64   `json:"totalProperties"`
	ActiveProperties int64   `json:"activeProperties"`
	TotalViews       int64   `json:"totalViews"`
	TotalFavorites   int64   `json:"totalFavorites"`
	TotalValue       float64 `json:"totalValue"`
}
