package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDecodeModelsMapShape(t *testing.T) {
	raw := json.RawMessage(`{"Laptop":["ThinkPad X1"],"Mobile":["iPhone 15"]}`)
	models, migrated, err := DecodeModels(raw)
	if err != nil {
		t.Fatalf("DecodeModels: %v", err)
	}
	if migrated {
		t.Error("map shape must not trigger migration")
	}
	if !reflect.DeepEqual(models["Laptop"], []string{"ThinkPad X1"}) {
		t.Errorf("models[Laptop] = %v", models["Laptop"])
	}
}

func TestDecodeModelsLegacyFlatList(t *testing.T) {
	raw := json.RawMessage(`["ThinkPad X1","Dell XPS"]`)
	models, migrated, err := DecodeModels(raw)
	if err != nil {
		t.Fatalf("DecodeModels: %v", err)
	}
	if !migrated {
		t.Error("flat list must report migration")
	}
	if !reflect.DeepEqual(models["*"], []string{"ThinkPad X1", "Dell XPS"}) {
		t.Errorf("legacy bucket = %v", models["*"])
	}
}

func TestDecodeModelsEmptyAndInvalid(t *testing.T) {
	models, migrated, err := DecodeModels(nil)
	if err != nil || migrated || len(models) != 0 {
		t.Errorf("empty input: models=%v migrated=%v err=%v", models, migrated, err)
	}
	if _, _, err := DecodeModels(json.RawMessage(`42`)); err == nil {
		t.Error("expected error for scalar input")
	}
}

func TestModelsForIncludesLegacyBucket(t *testing.T) {
	s := Settings{Models: map[string][]string{
		"Laptop": {"ThinkPad X1"},
		"*":      {"Vecchio Modello"},
	}}
	got := s.ModelsFor("Laptop")
	if !reflect.DeepEqual(got, []string{"ThinkPad X1", "Vecchio Modello"}) {
		t.Errorf("ModelsFor(Laptop) = %v", got)
	}
}

func TestDefaultSettingsSLA(t *testing.T) {
	s := DefaultSettings()
	if s.SLAHoursFor(StatusDiagnosi) != 48 {
		t.Errorf("Diagnosi SLA = %d, want 48", s.SLAHoursFor(StatusDiagnosi))
	}
	if s.SLAHoursFor(StatusInLavorazione) != 120 {
		t.Errorf("In Lavorazione SLA = %d, want 120", s.SLAHoursFor(StatusInLavorazione))
	}
	if s.SLAHoursFor(StatusAttesaParti) != 240 {
		t.Errorf("Attesa Parti SLA = %d, want 240", s.SLAHoursFor(StatusAttesaParti))
	}
	if s.SLAHoursFor(StatusIngresso) != 0 {
		t.Errorf("Ingresso SLA = %d, want 0", s.SLAHoursFor(StatusIngresso))
	}
}

func TestDefaultSettingsWithSLA(t *testing.T) {
	s := DefaultSettingsWithSLA(24, 72, 168)
	if s.SLAHoursFor(StatusDiagnosi) != 24 || s.SLAHoursFor(StatusInLavorazione) != 72 || s.SLAHoursFor(StatusAttesaParti) != 168 {
		t.Errorf("SLA hours = %v, want 24/72/168", s.SLAHours)
	}
	if len(s.Categories) == 0 || len(s.PartCategories) == 0 {
		t.Error("configured thresholds must not strip the rest of the seed")
	}
}
