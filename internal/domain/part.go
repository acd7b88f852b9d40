package domain

// InventoryPart is a spare part tracked in the workshop inventory.
// Quantity is kept non-negative by the inventory service; parts carry no
// history of their own.
type InventoryPart struct {
	ID          string
	Name        string
	Category    string
	Quantity    int
	MinQuantity int

	// CompatibleAssetCategory restricts the part to one asset category.
	// Empty means universal.
	CompatibleAssetCategory string
	// CompatibleModels further restricts the part within its asset
	// category. Empty means any model.
	CompatibleModels []string
}

// LowStock reports whether the part is at or below its reorder threshold.
func (p *InventoryPart) LowStock() bool {
	return p.Quantity <= p.MinQuantity
}

// CompatibleWith reports whether the part is eligible for a device of the
// given category and model. Parts without an asset category are universal.
// A "Generic" entry in the model list acts as a wildcard for legacy data.
func (p *InventoryPart) CompatibleWith(category, model string) bool {
	if p.CompatibleAssetCategory == "" {
		return true
	}
	if p.CompatibleAssetCategory != category {
		return false
	}
	if len(p.CompatibleModels) == 0 {
		return true
	}
	for _, m := range p.CompatibleModels {
		if m == "Generic" || m == model {
			return true
		}
	}
	return false
}
