package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

const settingsKey = "master"

// SettingsRepository stores the master-data document as a single merged
// key-value row, with the same field-merge semantics as ticket updates.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Merge(ctx context.Context, partial map[string]any) error
	Replace(ctx context.Context, settings domain.Settings) error
}

type settingsRepository struct {
	pool *pgxpool.Pool
	seed domain.Settings
}

// NewSettingsRepository instantiates the repository. The seed document is
// written on first access, when no settings row exists yet.
func NewSettingsRepository(pool *pgxpool.Pool, seed domain.Settings) SettingsRepository {
	return &settingsRepository{pool: pool, seed: seed}
}

// settingsDoc keeps the models field raw so the legacy flat-list shape can be
// migrated on first read.
type settingsDoc struct {
	Categories       []string                    `json:"categories"`
	Models           json.RawMessage             `json:"models"`
	SuppliersInbound []string                    `json:"suppliers_inbound"`
	PartCategories   []string                    `json:"part_categories"`
	SLAHours         map[domain.RepairStatus]int `json:"sla_hours"`
	AssignRules      map[string]string           `json:"assign_rules"`
}

func (r *settingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM settings WHERE key=$1`, settingsKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := r.Replace(ctx, r.seed); err != nil {
			return domain.Settings{}, err
		}
		return r.seed, nil
	}
	if err != nil {
		return domain.Settings{}, err
	}

	var doc settingsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Settings{}, err
	}
	models, migrated, err := domain.DecodeModels(doc.Models)
	if err != nil {
		return domain.Settings{}, err
	}

	settings := domain.Settings{
		Categories:       doc.Categories,
		Models:           models,
		SuppliersInbound: doc.SuppliersInbound,
		PartCategories:   doc.PartCategories,
		SLAHours:         doc.SLAHours,
		AssignRules:      doc.AssignRules,
	}
	if migrated {
		// One-time migration of the legacy flat model list; persist so the
		// shape branch never runs again for this document.
		if err := r.Merge(ctx, map[string]any{"models": models}); err != nil {
			return domain.Settings{}, err
		}
	}
	return settings, nil
}

func (r *settingsRepository) Merge(ctx context.Context, partial map[string]any) error {
	encoded, err := json.Marshal(partial)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO settings (key, doc, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET doc = settings.doc || EXCLUDED.doc, updated_at = NOW()`
	_, err = r.pool.Exec(ctx, query, settingsKey, encoded)
	return err
}

func (r *settingsRepository) Replace(ctx context.Context, settings domain.Settings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO settings (key, doc, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`
	_, err = r.pool.Exec(ctx, query, settingsKey, encoded)
	return err
}
