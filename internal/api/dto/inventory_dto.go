package dto

// PartRequest creates or updates a spare part.
type PartRequest struct {
	Name                    string   `json:"name"`
	Category                string   `json:"category"`
	Quantity                int      `json:"quantity"`
	MinQuantity             int      `json:"min_quantity"`
	CompatibleAssetCategory string   `json:"compatible_asset_category"`
	CompatibleModels        []string `json:"compatible_models"`
}

// AdjustQuantityRequest applies a manual stock delta.
type AdjustQuantityRequest struct {
	Delta int `json:"delta"`
}

// TogglePartUsageRequest marks a part used or unused on a ticket.
type TogglePartUsageRequest struct {
	PartID string `json:"part_id"`
	Used   bool   `json:"used"`
}

// PartResponse is the inventory view of a part.
type PartResponse struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Category                string   `json:"category"`
	Quantity                int      `json:"quantity"`
	MinQuantity             int      `json:"min_quantity"`
	CompatibleAssetCategory string   `json:"compatible_asset_category"`
	CompatibleModels        []string `json:"compatible_models"`
	LowStock                bool     `json:"low_stock"`
}
