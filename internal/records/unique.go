package records

import (
	"strings"

	"github.com/agroflow/logicapture/internal/models"
	"github.com/agroflow/logicapture/internal/utils"
)

// uniqueItem is one candidate entry for the uniqueness ledger.
type uniqueItem struct {
	Type    string
	Value   string
	Current bool
}

// asteriskOnly reports whether a value is a placeholder like "*" or "***".
// Placeholders are exempt from uniqueness.
func asteriskOnly(v string) bool {
	if v == "" {
		return false
	}
	return strings.Trim(v, "*") == ""
}

// buildUniqueItems collects the ledger entries a record claims. Slash-joined
// groups contribute one entry per element. Empty and placeholder values are
// skipped.
func buildUniqueItems(r *models.Record) []uniqueItem {
	var items []uniqueItem

	add := func(typ, value string) {
		v := utils.Normalize(value)
		if v == "" || asteriskOnly(v) {
			return
		}
		items = append(items, uniqueItem{Type: typ, Value: v, Current: models.CurrentTypes[typ]})
	}

	add(models.TypeOBeta, r.OBeta)
	add(models.TypeBooking, r.Booking)
	add(models.TypeAWB, r.AWB)

	for _, t := range utils.SplitSlash(r.Thermographs) {
		add(models.TypeThermograph, t)
	}
	for _, ps := range utils.SplitSlash(r.PSBeta) {
		add(models.TypePSBeta, ps)
	}

	add(models.TypePSAduana, r.PSAduana)
	add(models.TypePSOperador, r.PSOperador)
	add(models.TypeSenasaPSLinea, r.SenasaPSLinea)

	return items
}

// releaseCurrent downgrades current-type claims to historic for records that
// left the in-flight state.
func releaseCurrent(items []uniqueItem) []uniqueItem {
	out := make([]uniqueItem, len(items))
	for i, it := range items {
		it.Current = false
		out[i] = it
	}
	return out
}
