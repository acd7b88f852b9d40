package domain

import "encoding/json"

// legacyModelsKey buckets models imported from the flat legacy list that
// carried no category association.
const legacyModelsKey = "*"

// Settings is the workshop master-data document. It is stored as a single
// merged key-value document, like tickets.
type Settings struct {
	Categories       []string             `json:"categories"`
	Models           map[string][]string  `json:"models"`
	SuppliersInbound []string             `json:"suppliers_inbound"`
	PartCategories   []string             `json:"part_categories"`
	SLAHours         map[RepairStatus]int `json:"sla_hours"`
	AssignRules      map[string]string    `json:"assign_rules"`
}

// DefaultSettings seeds a fresh installation.
func DefaultSettings() Settings {
	return Settings{
		Categories: []string{"Laptop", "Desktop", "Server", "Mobile", "Tablet"},
		Models: map[string][]string{
			"Laptop": {"ThinkPad X1", "MacBook Pro", "Dell XPS"},
			"Mobile": {"iPhone 15", "Galaxy S24"},
		},
		SuppliersInbound: []string{"TechParts Inc.", "Global Components", "ScreenFix"},
		PartCategories:   []string{"Display", "Battery", "Storage", "Memory", "Mainboard"},
		SLAHours: map[RepairStatus]int{
			StatusDiagnosi:      48,
			StatusInLavorazione: 120,
			StatusAttesaParti:   240,
		},
		AssignRules: map[string]string{},
	}
}

// DefaultSettingsWithSLA seeds a fresh installation with configured dwell
// thresholds in place of the built-in ones.
func DefaultSettingsWithSLA(diagnosisHours, workingHours, partsHours int) Settings {
	s := DefaultSettings()
	s.SLAHours = map[RepairStatus]int{
		StatusDiagnosi:      diagnosisHours,
		StatusInLavorazione: workingHours,
		StatusAttesaParti:   partsHours,
	}
	return s
}

// DecodeModels parses the models master-data field, tolerating the legacy
// flat-list shape. A flat list is migrated once into the "*" bucket; callers
// should persist the result when migrated is true so the branch never runs
// again for that document.
func DecodeModels(raw json.RawMessage) (models map[string][]string, migrated bool, err error) {
	if len(raw) == 0 {
		return map[string][]string{}, false, nil
	}
	if err = json.Unmarshal(raw, &models); err == nil {
		return models, false, nil
	}
	var flat []string
	if err = json.Unmarshal(raw, &flat); err != nil {
		return nil, false, err
	}
	return map[string][]string{legacyModelsKey: flat}, true, nil
}

// ModelsFor returns the models configured for a category, including legacy
// uncategorized entries.
func (s Settings) ModelsFor(category string) []string {
	out := append([]string{}, s.Models[category]...)
	out = append(out, s.Models[legacyModelsKey]...)
	return out
}

// SLAHoursFor returns the threshold for a status, 0 meaning no SLA.
func (s Settings) SLAHoursFor(status RepairStatus) int {
	return s.SLAHours[status]
}
