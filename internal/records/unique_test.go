package records

import (
	"testing"

	"github.com/agroflow/logicapture/internal/models"
)

func TestBuildUniqueItems(t *testing.T) {
	rec := &models.Record{
		OBeta:         "OB-1",
		Booking:       "BK-1",
		AWB:           "MSKU1234567",
		Thermographs:  "T-1/T-2",
		PSBeta:        "S-1/S-2/S-3",
		PSAduana:      "AD-1",
		PSOperador:    "",
		SenasaPSLinea: "SN-1/PS.L-1",
	}

	items := buildUniqueItems(rec)

	// 3 refs + 2 thermographs + 3 seals + 1 aduana + 1 combined = 10
	if len(items) != 10 {
		t.Fatalf("got %d items: %+v", len(items), items)
	}

	byType := make(map[string][]uniqueItem)
	for _, it := range items {
		byType[it.Type] = append(byType[it.Type], it)
	}

	if len(byType[models.TypeThermograph]) != 2 {
		t.Errorf("thermographs = %v", byType[models.TypeThermograph])
	}
	if len(byType[models.TypePSBeta]) != 3 {
		t.Errorf("seals = %v", byType[models.TypePSBeta])
	}
	if len(byType[models.TypePSOperador]) != 0 {
		t.Error("empty values must be skipped")
	}

	for _, it := range items {
		wantCurrent := it.Type == models.TypeAWB
		if it.Current != wantCurrent {
			t.Errorf("%s current = %v", it.Type, it.Current)
		}
	}
}

func TestBuildUniqueItemsAsteriskExempt(t *testing.T) {
	rec := &models.Record{
		Booking:  "BK-2",
		PSAduana: "***",
		PSBeta:   "*/S-1",
	}

	items := buildUniqueItems(rec)

	for _, it := range items {
		if it.Value == "***" || it.Value == "*" {
			t.Errorf("placeholder %q must not claim uniqueness", it.Value)
		}
	}
	if len(items) != 2 { // BOOKING + S-1
		t.Errorf("got %d items: %+v", len(items), items)
	}
}

func TestReleaseCurrent(t *testing.T) {
	items := []uniqueItem{
		{Type: models.TypeAWB, Value: "MSKU1234567", Current: true},
		{Type: models.TypeBooking, Value: "BK-1"},
	}

	for _, it := range releaseCurrent(items) {
		if it.Current {
			t.Errorf("%s should be released", it.Type)
		}
	}
	if !items[0].Current {
		t.Error("input slice must not be mutated")
	}
}
