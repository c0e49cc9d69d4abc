package sap

import (
	"bytes"
	"testing"
	"time"

	"github.com/agroflow/logicapture/internal/models"
)

func sampleRecord() *models.Record {
	return &models.Record{
		ID:           7,
		RegisteredAt: time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC),
		OBeta:        "OB-100",
		Booking:      "BK-2026-01",
		AWB:          "MSKU1234567",
		DAM:          "118-2026-10-012345",
		Thermographs: "T-1/T-2",
		PSBeta:       "SEAL001/SEAL002",
		PSAduana:     "AD-9",
		PSOperador:   "OP-3",
		Senasa:       "SN-5",
		PSLinea:      "LN-8",
		SenasaPSLinea: "SN-5/PS.LN-8",
		Driver: &models.Driver{
			DNI:     "45678912",
			Name:    "Juan Quispe",
			SapName: "QUISPE, JUAN",
			License: "Q45678912",
		},
		Vehicle: &models.Vehicle{
			Plates:      "ABC-123/XYZ-789",
			Brand:       "VOLVO",
			VehicleCert: "CV-555",
		},
		Carrier: &models.Carrier{
			Name:          "TRANSPORTES ANDINOS",
			SapCode:       "T-AND",
			RegistryEntry: "PR-777",
		},
	}
}

func TestRowFromRecord(t *testing.T) {
	row := RowFromRecord(sampleRecord())

	if row.Fecha != "2026-08-20" {
		t.Errorf("Fecha = %q", row.Fecha)
	}
	if row.Chofer != "QUISPE, JUAN" {
		t.Errorf("Chofer should prefer the SAP name, got %q", row.Chofer)
	}
	if row.Placas != "ABC-123/XYZ-789" || row.CerVehicular != "CV-555" {
		t.Errorf("vehicle cells wrong: %+v", row)
	}
	if row.CodigoSAP != "T-AND" || row.PRegistral != "PR-777" {
		t.Errorf("carrier cells wrong: %+v", row)
	}
	if row.SenasaPSLinea != "SN-5/PS.LN-8" {
		t.Errorf("SenasaPSLinea = %q", row.SenasaPSLinea)
	}

	if got, want := len(row.cells()), len(Columns); got != want {
		t.Fatalf("cells() has %d values for %d columns", got, want)
	}
}

func TestRowFromRecordMissingAssociations(t *testing.T) {
	row := RowFromRecord(&models.Record{RegisteredAt: time.Now()})
	if row.Chofer != "" || row.Placas != "" || row.Transportista != "" {
		t.Errorf("missing associations should leave empty cells: %+v", row)
	}
}

func TestRowFallsBackToDriverName(t *testing.T) {
	rec := sampleRecord()
	rec.Driver.SapName = ""
	if row := RowFromRecord(rec); row.Chofer != "Juan Quispe" {
		t.Errorf("Chofer = %q, want plain name fallback", row.Chofer)
	}
}

func TestManifestPDF(t *testing.T) {
	rows := []Row{RowFromRecord(sampleRecord())}

	pdf, err := ManifestPDF("Procesados 2026-08-20", rows)
	if err != nil {
		t.Fatalf("ManifestPDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output should be a PDF document")
	}
}
