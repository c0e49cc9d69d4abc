package scanner

// Field ids of the capture form. They double as routing targets for scans
// and must match the input ids used by the desktop page.
const (
	FieldBooking      = "booking"
	FieldOBeta        = "o_beta"
	FieldAWB          = "awb"
	FieldDAM          = "dam"
	FieldDNI          = "dni"
	FieldPlacaTracto  = "placas_tracto"
	FieldPlacaCarreta = "placas_carreta"
	FieldPSAduana     = "ps_aduana"
	FieldPSOperador   = "ps_operador"
	FieldSenasa       = "senasa"
	FieldPSLinea      = "ps_linea"

	FieldPSBetaItems     = "ps_beta_items"
	FieldTermografoItems = "termografos_items"
)

// FormState is the desktop capture form. Values held here are already
// normalized; normalization happens exactly once, on acceptance into the
// form, so scans and keyboard entry end up in the same canonical shape.
type FormState struct {
	Booking string
	OBeta   string
	AWB     string
	DAM     string

	DNI          string
	PlacaTracto  string
	PlacaCarreta string

	PSAduana   string
	PSOperador string
	Senasa     string
	PSLinea    string

	PSBetaItems     []string
	TermografoItems []string

	// LastFocused is the id of the most recently focused input, the primary
	// routing target for an incoming scan.
	LastFocused string
}

// singleValueFields maps a focusable single-value field id to its setter.
// Array fields are deliberately absent; focus on them falls through to the
// routing heuristics.
var singleValueFields = map[string]func(*FormState, string){
	FieldBooking:      func(f *FormState, v string) { f.Booking = v },
	FieldOBeta:        func(f *FormState, v string) { f.OBeta = v },
	FieldAWB:          func(f *FormState, v string) { f.AWB = v },
	FieldDAM:          func(f *FormState, v string) { f.DAM = v },
	FieldDNI:          func(f *FormState, v string) { f.DNI = v },
	FieldPlacaTracto:  func(f *FormState, v string) { f.PlacaTracto = v },
	FieldPlacaCarreta: func(f *FormState, v string) { f.PlacaCarreta = v },
	FieldPSAduana:     func(f *FormState, v string) { f.PSAduana = v },
	FieldPSOperador:   func(f *FormState, v string) { f.PSOperador = v },
	FieldSenasa:       func(f *FormState, v string) { f.Senasa = v },
	FieldPSLinea:      func(f *FormState, v string) { f.PSLinea = v },
}

// clone returns a copy with its own backing arrays so routing can stay pure.
func (f FormState) clone() FormState {
	out := f
	out.PSBetaItems = append([]string(nil), f.PSBetaItems...)
	out.TermografoItems = append([]string(nil), f.TermografoItems...)
	return out
}

func contains(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}
