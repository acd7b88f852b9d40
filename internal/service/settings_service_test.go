package service

import (
	"context"
	"testing"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

func TestSettingsMergeRequiresManager(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo)
	ctx := context.Background()

	err := svc.Merge(ctx, operator(), map[string]any{"categories": []string{"Laptop"}})
	assertDomainCode(t, err, "FORBIDDEN")

	err = svc.Merge(ctx, manager(), map[string]any{})
	assertDomainCode(t, err, "VALIDATION_FAILED")

	if err := svc.Merge(ctx, manager(), map[string]any{"categories": []string{"Laptop", "Stampante"}}); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(repo.merges) != 1 {
		t.Errorf("merges recorded = %d, want 1", len(repo.merges))
	}
}

func TestModelsForMergesLegacyBucket(t *testing.T) {
	repo := newFakeSettingsRepo()
	repo.settings.Models = map[string][]string{
		"Laptop": {"ThinkPad X1"},
		"*":      {"Compaq Presario"},
	}
	svc := NewSettingsService(repo)

	models, err := svc.ModelsFor(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("ModelsFor: %v", err)
	}
	want := []string{"ThinkPad X1", "Compaq Presario"}
	if len(models) != len(want) || models[0] != want[0] || models[1] != want[1] {
		t.Errorf("models = %v, want %v", models, want)
	}

	models, err = svc.ModelsFor(context.Background(), "Fotocamera")
	if err != nil {
		t.Fatalf("ModelsFor: %v", err)
	}
	if len(models) != 1 || models[0] != "Compaq Presario" {
		t.Errorf("unknown category models = %v, want only the legacy bucket", models)
	}
}

func TestUpdateSLAValidatesStatuses(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo)
	ctx := context.Background()

	err := svc.UpdateSLA(ctx, manager(), map[domain.RepairStatus]int{"Sconosciuto": 10})
	assertDomainCode(t, err, "INVALID_STATUS")

	if err := svc.UpdateSLA(ctx, manager(), map[domain.RepairStatus]int{domain.StatusDiagnosi: 24}); err != nil {
		t.Fatalf("UpdateSLA: %v", err)
	}
	if len(repo.merges) != 1 {
		t.Errorf("merges recorded = %d, want 1", len(repo.merges))
	}
}
