// Package sap projects processed records into the row layout the staff
// pastes into SAP, and renders printable manifests of those rows.
package sap

import (
	"github.com/agroflow/logicapture/internal/models"
)

// Columns is the exact SAP paste order. The JSON field names of Row must
// stay aligned with it.
var Columns = []string{
	"FECHA", "O_BETA", "BOOKING", "AWB", "MARCA", "PLACAS", "DNI", "CHOFER",
	"LICENCIA", "TERMOGRAFOS", "CODIGO_SAP", "TRANSPORTISTA", "PS_BETA",
	"PS_ADUANA", "PS_OPERADOR", "SENASA_PS_LINEA", "N_DAM", "P_REGISTRAL",
	"CER_VEHICULAR",
}

// Row is one record flattened for SAP entry.
type Row struct {
	Fecha         string `json:"FECHA"`
	OBeta         string `json:"O_BETA"`
	Booking       string `json:"BOOKING"`
	AWB           string `json:"AWB"`
	Marca         string `json:"MARCA"`
	Placas        string `json:"PLACAS"`
	DNI           string `json:"DNI"`
	Chofer        string `json:"CHOFER"`
	Licencia      string `json:"LICENCIA"`
	Termografos   string `json:"TERMOGRAFOS"`
	CodigoSAP     string `json:"CODIGO_SAP"`
	Transportista string `json:"TRANSPORTISTA"`
	PSBeta        string `json:"PS_BETA"`
	PSAduana      string `json:"PS_ADUANA"`
	PSOperador    string `json:"PS_OPERADOR"`
	SenasaPSLinea string `json:"SENASA_PS_LINEA"`
	NDam          string `json:"N_DAM"`
	PRegistral    string `json:"P_REGISTRAL"`
	CerVehicular  string `json:"CER_VEHICULAR"`
}

// RowFromRecord flattens a record with its preloaded driver, vehicle and
// carrier. Missing associations produce empty cells, never a panic.
func RowFromRecord(r *models.Record) Row {
	row := Row{
		Fecha:         r.RegisteredAt.Format("2006-01-02"),
		OBeta:         r.OBeta,
		Booking:       r.Booking,
		AWB:           r.AWB,
		Termografos:   r.Thermographs,
		PSBeta:        r.PSBeta,
		PSAduana:      r.PSAduana,
		PSOperador:    r.PSOperador,
		SenasaPSLinea: r.SenasaPSLinea,
		NDam:          r.DAM,
	}
	if d := r.Driver; d != nil {
		row.DNI = d.DNI
		row.Chofer = d.SapName
		if row.Chofer == "" {
			row.Chofer = d.Name
		}
		row.Licencia = d.License
	}
	if v := r.Vehicle; v != nil {
		row.Marca = v.Brand
		row.Placas = v.Plates
		row.CerVehicular = v.VehicleCert
	}
	if c := r.Carrier; c != nil {
		row.CodigoSAP = c.SapCode
		row.Transportista = c.Name
		row.PRegistral = c.RegistryEntry
	}
	return row
}

// cells returns the row values in Columns order.
func (r Row) cells() []string {
	return []string{
		r.Fecha, r.OBeta, r.Booking, r.AWB, r.Marca, r.Placas, r.DNI,
		r.Chofer, r.Licencia, r.Termografos, r.CodigoSAP, r.Transportista,
		r.PSBeta, r.PSAduana, r.PSOperador, r.SenasaPSLinea, r.NDam,
		r.PRegistral, r.CerVehicular,
	}
}
