package scanner

import (
	"fmt"

	"github.com/agroflow/logicapture/internal/utils"
)

// Routing outcomes. Duplicate means the scan landed nowhere and the form is
// unchanged.
const (
	ActionReplaced  = "replaced"
	ActionAppended  = "appended"
	ActionDuplicate = "duplicate"
)

// RouteOutcome tells the caller where a scan landed so it can toast and
// briefly highlight the destination field.
type RouteOutcome struct {
	Action  string
	Field   string
	Value   string
	Message string
}

func isEightDigits(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// RouteScan decides which form field receives a scanned payload. Pure state
// transition, no I/O. Rules in order, first match wins:
//
//  1. A focused single-value field takes the payload, overwriting it.
//  2. An 8-digit payload goes to the DNI field regardless of focus.
//  3. Anything else is a seal code: appended to the focused array list
//     (thermographs when that list holds focus, seals otherwise) unless
//     already present, in which case the form is left untouched.
func RouteScan(form FormState, payload string) (FormState, RouteOutcome) {
	value := utils.Normalize(payload)
	next := form.clone()

	if set, ok := singleValueFields[form.LastFocused]; ok {
		set(&next, value)
		return next, RouteOutcome{
			Action:  ActionReplaced,
			Field:   form.LastFocused,
			Value:   value,
			Message: fmt.Sprintf("Valor asignado a %s", form.LastFocused),
		}
	}

	if isEightDigits(value) {
		next.DNI = value
		return next, RouteOutcome{
			Action:  ActionReplaced,
			Field:   FieldDNI,
			Value:   value,
			Message: "DNI detectado",
		}
	}

	field := FieldPSBetaItems
	list := &next.PSBetaItems
	label := "Precinto"
	if form.LastFocused == FieldTermografoItems {
		field = FieldTermografoItems
		list = &next.TermografoItems
		label = "Termógrafo"
	}

	if contains(*list, value) {
		return form, RouteOutcome{
			Action:  ActionDuplicate,
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("%s duplicado, no agregado", label),
		}
	}

	*list = append(*list, value)
	return next, RouteOutcome{
		Action:  ActionAppended,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("%s agregado", label),
	}
}
