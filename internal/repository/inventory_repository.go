package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

// InventoryRepository encapsulates spare part persistence.
type InventoryRepository interface {
	Create(ctx context.Context, part *domain.InventoryPart) error
	GetByID(ctx context.Context, id string) (*domain.InventoryPart, error)
	GetByName(ctx context.Context, name string) (*domain.InventoryPart, error)
	List(ctx context.Context) ([]domain.InventoryPart, error)
	// AdjustQuantity applies a delta clamped at a floor of zero and returns
	// the resulting quantity.
	AdjustQuantity(ctx context.Context, id string, delta int) (int, error)
	Update(ctx context.Context, part *domain.InventoryPart) error
	Delete(ctx context.Context, id string) error
}

type inventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository instantiates the repository.
func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &inventoryRepository{pool: pool}
}

const partColumns = `id, name, category, quantity, min_quantity, compatible_asset_category, compatible_models`

func (r *inventoryRepository) Create(ctx context.Context, part *domain.InventoryPart) error {
	models, err := json.Marshal(emptyIfNil(part.CompatibleModels))
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO inventory_parts (name, category, quantity, min_quantity, compatible_asset_category, compatible_models)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		part.Name,
		part.Category,
		part.Quantity,
		part.MinQuantity,
		part.CompatibleAssetCategory,
		models,
	).Scan(&part.ID)
}

func (r *inventoryRepository) GetByID(ctx context.Context, id string) (*domain.InventoryPart, error) {
	query := `SELECT ` + partColumns + ` FROM inventory_parts WHERE id=$1`
	return scanPart(r.pool.QueryRow(ctx, query, id))
}

func (r *inventoryRepository) GetByName(ctx context.Context, name string) (*domain.InventoryPart, error) {
	query := `SELECT ` + partColumns + ` FROM inventory_parts WHERE name=$1`
	return scanPart(r.pool.QueryRow(ctx, query, name))
}

func (r *inventoryRepository) List(ctx context.Context) ([]domain.InventoryPart, error) {
	query := `SELECT ` + partColumns + ` FROM inventory_parts ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.InventoryPart
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *part)
	}
	return result, rows.Err()
}

func (r *inventoryRepository) AdjustQuantity(ctx context.Context, id string, delta int) (int, error) {
	const query = `
        UPDATE inventory_parts SET quantity = GREATEST(0, quantity + $1)
        WHERE id=$2
        RETURNING quantity`
	var quantity int
	if err := r.pool.QueryRow(ctx, query, delta, id).Scan(&quantity); err != nil {
		return 0, err
	}
	return quantity, nil
}

func (r *inventoryRepository) Update(ctx context.Context, part *domain.InventoryPart) error {
	models, err := json.Marshal(emptyIfNil(part.CompatibleModels))
	if err != nil {
		return err
	}
	const query = `
        UPDATE inventory_parts SET name=$1, category=$2, quantity=GREATEST(0,$3), min_quantity=$4,
            compatible_asset_category=$5, compatible_models=$6
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		part.Name,
		part.Category,
		part.Quantity,
		part.MinQuantity,
		part.CompatibleAssetCategory,
		models,
		part.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *inventoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM inventory_parts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanPart(row rowScanner) (*domain.InventoryPart, error) {
	var (
		part      domain.InventoryPart
		modelsRaw []byte
	)
	if err := row.Scan(
		&part.ID,
		&part.Name,
		&part.Category,
		&part.Quantity,
		&part.MinQuantity,
		&part.CompatibleAssetCategory,
		&modelsRaw,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(modelsRaw, &part.CompatibleModels); err != nil {
		return nil, err
	}
	return &part, nil
}
